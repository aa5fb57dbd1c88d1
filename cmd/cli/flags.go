package main

import (
	"strings"

	"jobmetrics/internal/jobs"

	"github.com/spf13/cobra"
)

// filterFlags binds the report filter to command flags
type filterFlags struct {
	years       []int
	months      []string
	jobTypes    []string
	clientTypes []string
	client      string
	channels    []string
	statuses    []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntSliceVar(&f.years, "years", nil, "Only these years (AÑO)")
	cmd.Flags().StringSliceVar(&f.months, "months", nil, "Only these months (MES), e.g. ENERO,FEBRERO")
	cmd.Flags().StringSliceVar(&f.jobTypes, "job-types", nil, "Only these job types (TIPO DE TRABAJO)")
	cmd.Flags().StringSliceVar(&f.clientTypes, "client-types", nil, "Only these client types (TIPO DE CLIENTE)")
	cmd.Flags().StringVar(&f.client, "client", "", "Client name contains (case-insensitive)")
	cmd.Flags().StringSliceVar(&f.channels, "channels", nil, "Only these acquisition channels (CAPTACIÓN CLIENTE)")
	cmd.Flags().StringSliceVar(&f.statuses, "statuses", nil, "Only these payment statuses (ESTADO)")
}

func (f *filterFlags) filter() (jobs.Filter, error) {
	months := make([]string, len(f.months))
	for i, m := range f.months {
		months[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	return jobs.Filter{
		Years:          f.years,
		Months:         months,
		JobTypes:       f.jobTypes,
		ClientTypes:    f.clientTypes,
		ClientContains: strings.TrimSpace(f.client),
		Channels:       f.channels,
		Statuses:       f.statuses,
	}, nil
}
