package workload

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Variant selects the economy model.
type Variant int

const (
	// PeerToPeer moves value only between customer accounts.
	PeerToPeer Variant = iota

	// BankMediated adds an in-process bank account that pays rewards and receives payments.
	BankMediated
)

// String provides a string representation of Variant for logging and debugging.
func (v Variant) String() string {
	switch v {
	case PeerToPeer:
		return "transfer"
	case BankMediated:
		return "bank"
	default:
		return "unknown"
	}
}

// ParseVariant accepts the short names as well as the class names of the YCSB+T workloads.
func ParseVariant(s string) (Variant, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	switch name {
	case "", "transfer", "peer", "peertopeer", "closedeconomytrnsfrbtnaccworkload":
		return PeerToPeer, nil
	case "bank", "closedeconomyconstantaccountworkload":
		return BankMediated, nil
	default:
		return PeerToPeer, errors.Join(ErrUnknownWorkload, fmt.Errorf("%q", s))
	}
}

// Distribution names a key or length distribution.
type Distribution string

const (
	DistributionUniform     Distribution = "uniform"
	DistributionZipfian     Distribution = "zipfian"
	DistributionLatest      Distribution = "latest"
	DistributionHotspot     Distribution = "hotspot"
	DistributionExponential Distribution = "exponential"
	DistributionConstant    Distribution = "constant"
	DistributionHistogram   Distribution = "histogram"
)

// Property names.
const (
	PropWorkload                 = "workload"
	PropTable                    = "table"
	PropRecordCount              = "recordcount"
	PropOperationCount           = "operationcount"
	PropInitialCash              = "initialcash"
	PropInitialCashAlias         = "initial_cash"
	PropInsertStart              = "insertstart"
	PropReadProportion           = "readproportion"
	PropScanProportion           = "scanproportion"
	PropTransferProportion       = "transferbetweencustomerproportion"
	PropPayToBankProportion      = "paytobankproportion"
	PropRewardCustomerProportion = "rewardcustomerproportion"
	PropInsertProportion         = "insertproportion"
	PropRequestDistribution      = "requestdistribution"
	PropHotspotDataFraction      = "hotspotdatafraction"
	PropHotspotOpnFraction       = "hotspotopnfraction"
	PropExponentialPercentile    = "exponential.percentile"
	PropExponentialFrac          = "exponential.frac"
	PropFieldCount               = "fieldcount"
	PropFieldLength              = "fieldlength"
	PropFieldLengthDistribution  = "fieldlengthdistribution"
	PropFieldLengthHistogram     = "fieldlengthhistogram"
	PropMaxScanLength            = "maxscanlength"
	PropScanLengthDistribution   = "scanlengthdistribution"
	PropReadAllFields            = "readallfields"
	PropPrintTransactionTrace    = "printTransactionTrace"
	PropPrintKeysInRead          = "printKeysInReadOperation"
	PropPrintKeysInTransfer      = "printKeysInTransferOperation"
)

const (
	defaultTable                 = "usertable"
	defaultInitialCash           = 1000
	defaultTransferProportion    = 0.5
	defaultBankReadProportion    = 0.95
	defaultHotspotDataFraction   = 0.2
	defaultHotspotOpnFraction    = 0.8
	defaultExponentialPercentile = 95.0
	defaultExponentialFrac       = 0.8571428571
	defaultFieldCount            = 10
	defaultFieldLength           = 100
	defaultFieldLengthHistogram  = "hist.txt"
	defaultMaxScanLength         = 1000
)

// Proportions are the selection weights of the operation kinds. They need not sum to 1.
type Proportions struct {
	Read           float64
	Scan           float64
	Transfer       float64
	PayToBank      float64
	RewardCustomer float64

	// Insert only widens the zipfian keyspace. Records are inserted in the load phase alone.
	Insert float64
}

// Total sums the weights of all selectable operations.
func (p Proportions) Total() float64 {
	return p.Read + p.Scan + p.Transfer + p.PayToBank + p.RewardCustomer
}

// Config is the parsed and checked configuration of a workload.
type Config struct {
	Variant                 Variant
	Table                   string
	RecordCount             int64
	OperationCount          int64
	InitialCash             int64
	InsertStart             int64
	Proportions             Proportions
	RequestDistribution     Distribution
	HotspotDataFraction     float64
	HotspotOpnFraction      float64
	ExponentialPercentile   float64
	ExponentialFrac         float64
	FieldCount              int64
	FieldLength             int64
	FieldLengthDistribution Distribution
	FieldLengthHistogram    string
	MaxScanLength           int64
	ScanLengthDistribution  Distribution
	ReadAllFields           bool
	PrintTransactionTrace   bool
	PrintKeysInRead         bool
	PrintKeysInTransfer     bool
}

// NewConfig parses the properties of a run. Every failure is a *FatalError.
func NewConfig(p Properties) (Config, error) {
	variant, err := ParseVariant(p.String("", PropWorkload))
	if err != nil {
		return Config{}, fatal("config", err)
	}

	cfg := Config{
		Variant:                 variant,
		Table:                   p.String(defaultTable, PropTable),
		RequestDistribution:     Distribution(strings.ToLower(p.String(string(DistributionUniform), PropRequestDistribution))),
		FieldLengthDistribution: Distribution(strings.ToLower(p.String(string(DistributionConstant), PropFieldLengthDistribution))),
		FieldLengthHistogram:    p.String(defaultFieldLengthHistogram, PropFieldLengthHistogram),
		ScanLengthDistribution:  Distribution(strings.ToLower(p.String(string(DistributionUniform), PropScanLengthDistribution))),
	}

	if !p.Has(PropRecordCount) {
		return Config{}, fatal("config", errors.Join(ErrMissingProperty, fmt.Errorf("%s", PropRecordCount)))
	}

	readDefault, transferDefault := 0.0, defaultTransferProportion
	if variant == BankMediated {
		readDefault, transferDefault = defaultBankReadProportion, 0.0
	}

	ints := []struct {
		dst      *int64
		fallback int64
		keys     []string
	}{
		{&cfg.RecordCount, 0, []string{PropRecordCount}},
		{&cfg.OperationCount, 0, []string{PropOperationCount}},
		{&cfg.InitialCash, defaultInitialCash, []string{PropInitialCash, PropInitialCashAlias}},
		{&cfg.InsertStart, 0, []string{PropInsertStart}},
		{&cfg.FieldCount, defaultFieldCount, []string{PropFieldCount}},
		{&cfg.FieldLength, defaultFieldLength, []string{PropFieldLength}},
		{&cfg.MaxScanLength, defaultMaxScanLength, []string{PropMaxScanLength}},
	}

	for _, i := range ints {
		if *i.dst, err = p.Int64(i.fallback, i.keys...); err != nil {
			return Config{}, fatal("config", err)
		}
	}

	floats := []struct {
		dst      *float64
		fallback float64
		key      string
	}{
		{&cfg.Proportions.Read, readDefault, PropReadProportion},
		{&cfg.Proportions.Scan, 0, PropScanProportion},
		{&cfg.Proportions.Transfer, transferDefault, PropTransferProportion},
		{&cfg.Proportions.PayToBank, 0, PropPayToBankProportion},
		{&cfg.Proportions.RewardCustomer, 0, PropRewardCustomerProportion},
		{&cfg.Proportions.Insert, 0, PropInsertProportion},
		{&cfg.HotspotDataFraction, defaultHotspotDataFraction, PropHotspotDataFraction},
		{&cfg.HotspotOpnFraction, defaultHotspotOpnFraction, PropHotspotOpnFraction},
		{&cfg.ExponentialPercentile, defaultExponentialPercentile, PropExponentialPercentile},
		{&cfg.ExponentialFrac, defaultExponentialFrac, PropExponentialFrac},
	}

	for _, f := range floats {
		if *f.dst, err = p.Float64(f.fallback, f.key); err != nil {
			return Config{}, fatal("config", err)
		}
	}

	bools := []struct {
		dst      *bool
		fallback bool
		key      string
	}{
		{&cfg.ReadAllFields, true, PropReadAllFields},
		{&cfg.PrintTransactionTrace, false, PropPrintTransactionTrace},
		{&cfg.PrintKeysInRead, false, PropPrintKeysInRead},
		{&cfg.PrintKeysInTransfer, false, PropPrintKeysInTransfer},
	}

	for _, b := range bools {
		if *b.dst, err = p.Bool(b.fallback, b.key); err != nil {
			return Config{}, fatal("config", err)
		}
	}

	if err := cfg.check(); err != nil {
		return Config{}, fatal("config", err)
	}

	return cfg, nil
}

func (c Config) check() error {
	if c.RecordCount <= 0 {
		return errors.Join(ErrInvalidProperty, fmt.Errorf("%s must be positive, got %d", PropRecordCount, c.RecordCount))
	}

	if c.InitialCash < 0 {
		return errors.Join(ErrInvalidProperty, fmt.Errorf("%s must not be negative, got %d", PropInitialCash, c.InitialCash))
	}

	if math.MaxInt32/c.RecordCount < c.InitialCash {
		return errors.Join(ErrCashOverflow, fmt.Errorf("%d accounts with %d each", c.RecordCount, c.InitialCash))
	}

	if c.FieldCount < 1 {
		return errors.Join(ErrInvalidProperty, fmt.Errorf("%s must be at least 1, got %d", PropFieldCount, c.FieldCount))
	}

	if c.MaxScanLength < 1 {
		return errors.Join(ErrInvalidProperty, fmt.Errorf("%s must be at least 1, got %d", PropMaxScanLength, c.MaxScanLength))
	}

	if c.Variant == PeerToPeer && (c.Proportions.PayToBank > 0 || c.Proportions.RewardCustomer > 0) {
		return errors.Join(ErrInvalidProperty, fmt.Errorf("bank operations need the bank workload variant"))
	}

	if c.Proportions.Total() <= 0 {
		return ErrNoOperations
	}

	return nil
}

// ExpectedTotal is the invariant sum of all balances, including the bank in the bank variant.
func (c Config) ExpectedTotal() int64 {
	if c.Variant == BankMediated {
		return c.InitialCash * (c.RecordCount + 1)
	}

	return c.InitialCash * c.RecordCount
}
