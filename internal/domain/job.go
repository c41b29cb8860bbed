package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kind is one artifact category a download job can request.
type Kind string

const (
	KindStreamflow Kind = "streamflow"
	KindCatchment  Kind = "catchment"
)

// kindOrder fixes the processing order: streamflow before catchment.
var kindOrder = []Kind{KindStreamflow, KindCatchment}

// DefaultParameterCd is the NWIS parameter code for discharge (cfs).
const DefaultParameterCd = "00060"

// Validation errors returned by NewJob.
var (
	ErrNoSites           = errors.New("job has no sites")
	ErrNoKinds           = errors.New("job has no data kinds selected")
	ErrDateRangeRequired = errors.New("start and end dates are required unless all available data is requested")
)

// Job describes one batch download run: which stations, which artifact
// kinds, and the streamflow parameters. Construct via NewJob so an invalid
// shape is rejected before any work starts.
type Job struct {
	Sites       []string
	Kinds       []Kind
	ParameterCd string
	StartDate   string // YYYY-MM-DD, ignored when AllData
	EndDate     string // YYYY-MM-DD, ignored when AllData
	AllData     bool
}

// NewJob validates and normalizes a job descriptor. Kinds are deduplicated
// and reordered to the fixed processing order; an empty parameter code gets
// the discharge default. AllData overrides any explicit dates.
func NewJob(sites []string, kinds []Kind, parameterCd, startDate, endDate string, allData bool) (Job, error) {
	if len(sites) == 0 {
		return Job{}, ErrNoSites
	}
	if len(kinds) == 0 {
		return Job{}, ErrNoKinds
	}

	selected := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		switch k {
		case KindStreamflow, KindCatchment:
			selected[k] = true
		default:
			return Job{}, fmt.Errorf("unknown data kind %q", k)
		}
	}
	ordered := make([]Kind, 0, len(selected))
	for _, k := range kindOrder {
		if selected[k] {
			ordered = append(ordered, k)
		}
	}

	if parameterCd == "" {
		parameterCd = DefaultParameterCd
	}

	if allData {
		startDate, endDate = "", ""
	} else if selected[KindStreamflow] {
		if startDate == "" || endDate == "" {
			return Job{}, ErrDateRangeRequired
		}
		for _, d := range []string{startDate, endDate} {
			if _, err := time.Parse("2006-01-02", d); err != nil {
				return Job{}, fmt.Errorf("invalid date %q: %w", d, err)
			}
		}
	}

	return Job{
		Sites:       sites,
		Kinds:       ordered,
		ParameterCd: parameterCd,
		StartDate:   startDate,
		EndDate:     endDate,
		AllData:     allData,
	}, nil
}

// TotalSteps is the number of progress-incrementing steps the job will take.
func (j Job) TotalSteps() int {
	return len(j.Sites) * len(j.Kinds)
}
