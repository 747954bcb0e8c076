package pattern

// Statuses of a ResultTableItem.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
	StatusError   = "error"
)

// ResultTable lists benchmark results with timing and reliability.
type ResultTable struct {
	Label   string
	Results []ResultTableItem
}

// ResultTableItem is a single benchmark result row.
type ResultTableItem struct {
	Name        string
	Status      string // one of the Status constants
	Time        string // formatted execution time
	SuccessRate string // formatted percentage
	Memory      string // formatted memory, empty when not measured
	Details     string // extra info, e.g. run id or error text
}

func (t *ResultTable) Type() PatternType { return PatternTypeResultTable }
