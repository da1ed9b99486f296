package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/common/expfmt"

	"AidDesk/internal/cli/bootstrap"
)

type metricsCmd struct{}

func (metricsCmd) Name() string        { return "metrics" }
func (metricsCmd) Description() string { return "Print client metrics in Prometheus text format" }
func (metricsCmd) Usage() string       { return "metrics" }

func (metricsCmd) Run(_ context.Context, app *bootstrap.App, _ []string) error {
	mfs, err := app.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(Out, mf); err != nil {
			return err
		}
	}
	return nil
}

func init() { RegisterCmd(metricsCmd{}) }
