package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"soilsim/calculator"
	"soilsim/model"
)

var scenarioFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a toml scenario and log one line per column and day",
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := model.ReadScenario(scenarioFile)
		if err != nil {
			return err
		}
		return Run(Config, sc)
	},
}

// Run simulates sc and logs the daily snapshots.
func Run(cfg calculator.Config, sc *model.Scenario) error {
	sim, err := calculator.NewSimulation(cfg, sc.Env, sc.Columns)
	if err != nil {
		return err
	}
	defer sim.Close()

	hub := calculator.NewCalcHub()
	finished := make(chan error, 1)
	go func() {
		finished <- sim.Run(sc.Days, sc.Repeat, hub)
	}()
	for {
		select {
		case snaps := <-hub.PeriodCalcResult:
			logSnapshots(sc.Name, snaps)
		case err = <-finished:
			select {
			case snaps := <-hub.PeriodCalcResult:
				logSnapshots(sc.Name, snaps)
			default:
			}
			return err
		}
	}
}

func logSnapshots(name string, snaps []model.ColumnSnapshot) {
	for i, s := range snaps {
		temps := make([]float64, len(s.Layers))
		for l, ls := range s.Layers {
			temps[l] = ls.Temp
		}
		log.WithFields(log.Fields{
			"scenario":     name,
			"column":       i,
			"day":          s.Day,
			"scheme":       s.Scheme,
			"steps":        s.SubSteps,
			"temp":         temps,
			"maxThawDepth": s.MaxThawDepth,
			"ch4Emission":  s.CH4Emission,
			"ch4Sink":      s.CH4Sink,
		}).Info("日结果")
	}
}

func init() {
	runCmd.Flags().StringVar(&scenarioFile, "scenario", "./conf/scenario.toml", "scenario file location")
}
