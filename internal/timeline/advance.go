package timeline

// onFrame is the host animation-frame callback: it commits at most one time
// advance and reschedules itself while playback continues.
func (rt *Runtime) onFrame() {
	rt.mu.Lock()
	if rt.disposed || rt.state != StatePlaying {
		// A cancelled-but-raced frame; nothing to do.
		rt.mu.Unlock()
		return
	}
	ns := rt.advanceLocked()
	rt.mu.Unlock()
	rt.dispatch(ns)
}

// advanceLocked implements one advance:
//
//	elapsed = (now - lastTimestamp) * speed
//	candidate = min(current + elapsed, duration)
//
// If an unconsumed marker lies in (current, candidate], time commits at the
// marker instead and playback pauses there; otherwise the candidate commits
// and playback loops, finalizes, or schedules the next frame.
func (rt *Runtime) advanceLocked() []Notification {
	now := rt.clock.Now()
	elapsed := now.Sub(rt.lastTimestamp).Seconds() * rt.speed
	rt.lastTimestamp = now

	candidate := clamp(rt.current+elapsed, 0, rt.duration)

	if idx, ok := rt.duePauseMarkerLocked(candidate); ok {
		return rt.pauseAtMarkerLocked(idx)
	}

	rt.current = candidate
	ns := rt.commitNotificationsLocked()

	if rt.current >= rt.duration {
		if rt.loop {
			// Wrap: rewind, re-arm cues and markers, keep scheduling.
			ns = append(ns, rt.seekLocked(0)...)
			rt.consumed = make(map[int]struct{})
			rt.scheduleFrameLocked()
			rt.logger.Debug("Timeline looped.")
			return ns
		}
		rt.state = StateIdle
		rt.cancelFrameLocked()
		rt.logger.Debug("Timeline finished.")
		ns = append(ns,
			Notification{Kind: NoteStateChange, Time: rt.current, State: StateIdle},
			Notification{Kind: NoteEnd, Time: rt.current},
		)
		return ns
	}

	rt.scheduleFrameLocked()
	return ns
}

// duePauseMarkerLocked scans for the first unconsumed marker in
// (current, candidate], honoring the skip-initial policy: when enabled,
// a marker at time ≈ 0 never auto-pauses.
func (rt *Runtime) duePauseMarkerLocked(candidate float64) (int, bool) {
	if !rt.autoPause.Enabled {
		return 0, false
	}
	for i, m := range rt.markers {
		if m.Time <= rt.current {
			continue
		}
		if m.Time > candidate {
			break
		}
		if _, done := rt.consumed[i]; done {
			continue
		}
		if rt.autoPause.SkipInitialMarker && m.Time <= initialMarkerEpsilon {
			continue
		}
		return i, true
	}
	return 0, false
}

// pauseAtMarkerLocked commits time at the marker (not the candidate), marks
// it consumed, pauses, and arms the cancellable auto-resume timer.
func (rt *Runtime) pauseAtMarkerLocked(idx int) []Notification {
	m := rt.markers[idx]
	rt.consumed[idx] = struct{}{}
	rt.current = m.Time
	rt.cancelFrameLocked()
	rt.state = StatePaused
	rt.logger.Debug("Auto-paused at marker.", "time", m.Time, "label", m.Label)

	ns := []Notification{{Kind: NoteStateChange, Time: m.Time, State: StatePaused}}
	ns = append(ns, rt.commitNotificationsLocked()...)

	// The resume timer always arms; a zero or negative delay resumes on
	// the next clock delivery, so an unset pause duration never wedges
	// headless playback at the marker.
	delay := rt.autoPause.PauseDuration
	if delay < 0 {
		delay = 0
	}
	at := m.Time
	rt.cancelResumeLocked()
	rt.cancelResume = rt.clock.AfterFunc(delay, func() {
		rt.onAutoResume(at)
	})
	return ns
}

// onAutoResume fires when a marker's pause delay elapses. Stale timers are
// silent no-ops: the resume only happens if playback is still paused at
// exactly the marker time it was armed for, which guards the race with a
// manual resume or seek during the delay.
func (rt *Runtime) onAutoResume(at float64) {
	rt.mu.Lock()
	if rt.disposed || rt.state != StatePaused || rt.current != at {
		rt.mu.Unlock()
		return
	}
	rt.cancelResume = nil
	ns := rt.startPlayingLocked()
	rt.mu.Unlock()
	rt.dispatch(ns)
}
