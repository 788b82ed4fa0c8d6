package crowd

// SteerParams holds the tunables of the four steering rules. They are
// immutable for the duration of a tick; the scheduler copies them into
// the step state before dispatch.
type SteerParams struct {
	// Speed is the movement speed in world units per second. Agents
	// with any acceleration history move at exactly this speed.
	Speed float32

	SeparationRadius float32
	AlignmentRadius  float32
	CohesionRadius   float32

	SeparationWeight float32
	AlignmentWeight  float32
	CohesionWeight   float32

	// SeekSwitch is the leader distance beyond which agents seek the
	// leader itself rather than the secondary attractor.
	SeekSwitch float32
}

// agentSnapshot is one agent's pre-tick state as the kernel sees it.
type agentSnapshot struct {
	Slot int
	Pos  Vec3
	Vel  Vec3
}

// steerAgent computes the acceleration for agents[self]: separation,
// alignment and cohesion over every other agent in the snapshot, plus
// an unweighted seek so the leader pull dominates at long range. Pure
// function of its inputs; writes nothing.
func steerAgent(self int, agents []agentSnapshot, p SteerParams, leader, attractor Vec3) Vec3 {
	var (
		sepSum   Vec3
		alignSum Vec3
		cohSum   Vec3

		sepCount   int
		alignCount int
		cohCount   int
	)

	own := agents[self].Pos

	sepRSq := p.SeparationRadius * p.SeparationRadius
	alignRSq := p.AlignmentRadius * p.AlignmentRadius
	cohRSq := p.CohesionRadius * p.CohesionRadius

	for j := range agents {
		if j == self {
			continue
		}
		other := &agents[j]
		away := own.Sub(other.Pos)
		distSq := away.LenSq()

		// A coincident neighbor has no away direction; dividing by its
		// zero distance would put NaN in the store.
		if distSq > 0 && distSq < sepRSq {
			// away/distSq = unit direction weighted by 1/dist
			sepSum = sepSum.Add(away.Scale(1 / distSq))
			sepCount++
		}
		if distSq < alignRSq {
			alignSum = alignSum.Add(other.Vel)
			alignCount++
		}
		if distSq < cohRSq {
			cohSum = cohSum.Add(other.Pos)
			cohCount++
		}
	}

	var acc Vec3

	if sepCount > 0 {
		sep := sepSum.Scale(1 / float32(sepCount)).Normalized()
		acc = acc.Add(sep.Scale(p.SeparationWeight))
	}
	if alignCount > 0 {
		align := alignSum.Scale(1 / float32(alignCount)).Normalized()
		acc = acc.Add(align.Scale(p.AlignmentWeight))
	}
	if cohCount > 0 {
		centroid := cohSum.Scale(1 / float32(cohCount))
		coh := centroid.Sub(own).Normalized()
		acc = acc.Add(coh.Scale(p.CohesionWeight))
	}

	target := attractor
	if leader.Sub(own).LenSq() > p.SeekSwitch*p.SeekSwitch {
		target = leader
	}
	acc = acc.Add(target.Sub(own).Normalized())

	return acc
}
