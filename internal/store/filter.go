package store

// FilterTasks returns the tasks belonging to profile, in their original order.
func FilterTasks(tasks []Task, profile Profile) []Task {
	var out []Task
	for _, t := range tasks {
		if t.Profile == profile {
			out = append(out, t)
		}
	}
	return out
}

// FilterSchedules returns the schedule entries belonging to profile, in their original order.
func FilterSchedules(schedules []Schedule, profile Profile) []Schedule {
	var out []Schedule
	for _, s := range schedules {
		if s.Profile == profile {
			out = append(out, s)
		}
	}
	return out
}
