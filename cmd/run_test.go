package cmd

import (
	"testing"

	"soilsim/calculator"
	"soilsim/model"
)

func TestRunScenario(t *testing.T) {
	sc, err := model.ReadScenario("../conf/scenario.toml")
	if err != nil {
		t.Fatal(err)
	}
	if sc.Columns != 2 || sc.Repeat != 2 || len(sc.Days) != 5 {
		t.Fatalf("scenario %+v", sc)
	}
	cfg := calculator.DefaultConfig()
	cfg.Verify = true
	if err := Run(cfg, sc); err != nil {
		t.Fatal(err)
	}
}

func TestStartupConfig(t *testing.T) {
	if err := Startup("../conf/config.ini"); err != nil {
		t.Fatal(err)
	}
	if Config.NodesPerLayer != 2 || Config.DiffusionStrategy != "implicit" || !Config.Gas {
		t.Errorf("config %+v", Config)
	}
	if err := Startup("../conf/missing.ini"); err != nil {
		t.Errorf("missing file: %v", err)
	}
	if Config != calculator.DefaultConfig() {
		t.Errorf("missing file should give defaults, got %+v", Config)
	}
}
