package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/draftedge/prospect-rank/internal/model"
)

// seedFile is the YAML fixture format consumed by the seed command.
type seedFile struct {
	Prospects    []model.Prospect          `yaml:"prospects"`
	Observations []model.MetricObservation `yaml:"observations"`
}

var seedPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load prospects and observations from a YAML fixture file",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(seedPath)
		if err != nil {
			return eris.Wrap(err, "seed: read file")
		}

		var sf seedFile
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return eris.Wrap(err, "seed: parse file")
		}

		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		for _, p := range sf.Prospects {
			if _, err := model.ParsePosition(string(p.Position)); err != nil {
				return eris.Wrapf(err, "seed: prospect %s", p.ID)
			}
			if err := st.InsertProspect(cmd.Context(), p); err != nil {
				return err
			}
		}
		for _, o := range sf.Observations {
			if err := st.InsertObservation(cmd.Context(), o); err != nil {
				return err
			}
		}

		zap.L().Info("seed complete",
			zap.Int("prospects", len(sf.Prospects)),
			zap.Int("observations", len(sf.Observations)),
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedPath, "file", "seed.yaml", "path to the YAML fixture file")
	rootCmd.AddCommand(seedCmd)
}
