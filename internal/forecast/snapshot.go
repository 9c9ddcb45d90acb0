package forecast

import "time"

// Snapshot is a forecast stamped with the moment it describes and the
// moment it was built.
type Snapshot struct {
	At          time.Time
	GeneratedAt time.Time
	Forecast    Forecast
}

// SimulationYear returns the display year of the current point, if it was
// derived.
func (s Snapshot) SimulationYear() (int, bool) {
	f, ok := s.Forecast.Current.Field("simulation_year")
	if !ok || !f.Available() {
		return 0, false
	}
	y, ok := f.Value.(int)
	return y, ok
}
