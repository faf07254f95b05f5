package inventory

// Statistics accumulates the counters attached to every inventory node.
// Directories and Modules stay zero for module, class and function nodes.
type Statistics struct {
	Directories int `json:"directories"`
	Modules     int `json:"modules"`
	Classes     int `json:"classes"`
	Functions   int `json:"functions"`
	Lines       int `json:"lines"`
	Characters  int `json:"characters"`
	Tokens      int `json:"tokens,omitempty"`
}

// Merge returns the field-wise sum of the receiver and other.
func (statistics Statistics) Merge(other Statistics) Statistics {
	return Statistics{
		Directories: statistics.Directories + other.Directories,
		Modules:     statistics.Modules + other.Modules,
		Classes:     statistics.Classes + other.Classes,
		Functions:   statistics.Functions + other.Functions,
		Lines:       statistics.Lines + other.Lines,
		Characters:  statistics.Characters + other.Characters,
		Tokens:      statistics.Tokens + other.Tokens,
	}
}

// Add folds child into the caller-owned aggregate.
func (statistics *Statistics) Add(child Statistics) {
	*statistics = statistics.Merge(child)
}

// IsZero reports whether every counter is zero.
func (statistics Statistics) IsZero() bool {
	return statistics == Statistics{}
}
