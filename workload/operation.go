package workload

// Operation is the closed set of operation kinds a transaction can run.
type Operation int

const (
	OperationRead Operation = iota
	OperationScan
	OperationTransfer
	OperationPayToBank
	OperationRewardCustomer
)

// String returns the operation name used in traces.
func (o Operation) String() string {
	switch o {
	case OperationRead:
		return "READ"
	case OperationScan:
		return "SCAN"
	case OperationTransfer:
		return "TransferBetweenAcc"
	case OperationPayToBank:
		return "PayToBank"
	case OperationRewardCustomer:
		return "RewardCustomer"
	default:
		return "UNKNOWN"
	}
}

// MeasurementName returns the label latencies and outcomes are reported under.
func (o Operation) MeasurementName() string {
	return "TX-" + o.String()
}

// MeasurementInsert is the label of load phase inserts.
const MeasurementInsert = "INSERT"
