package cmd

import (
	"encoding/csv"
	"fmt"
	"os"

	sim "github.com/nislab/spectrum-sharing-simulations/sim"
)

var classLabels = [sim.NumClasses]string{"incumbent", "priority", "general"}

// PrintStudy writes the per-tier estimates for one study to stdout.
func PrintStudy(result *sim.StudyResult) {
	fmt.Printf("phi=%g replications=%d\n", result.Phi, len(result.Replications))
	for class, est := range result.PerClass {
		fmt.Printf("  %-9s wait=%.6g (+/- %.3g)  number=%.6g (+/- %.3g)  preempt=%.6g (+/- %.3g)\n",
			classLabels[class],
			est.MeanWait, est.WaitHalfWidth,
			est.MeanNumber, est.NumberHalfWidth,
			est.MeanPreempt, est.PreemptHalfWidth)
	}
	w := result.Welfare
	fmt.Printf("  welfare   cost-diff=%.6g (+/- %.3g)  revenue=%.6g (+/- %.3g)  social=%.6g (+/- %.3g)\n",
		w.MeanCost, w.CostHalfWidth,
		w.MeanRevenue, w.RevenueHalfWidth,
		w.MeanSocialAll, w.SocialHalfWidth)
}

// WriteStudyCSV appends one row per tier per study: the same
// [mean wait, CI, mean number in system, CI, mean preemptions, CI] shape
// the downstream plotting notebooks consume.
func WriteStudyCSV(path string, results []*sim.StudyResult) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for _, result := range results {
		for class, est := range result.PerClass {
			row := []string{
				fmt.Sprintf("%g", result.Phi),
				classLabels[class],
				fmt.Sprintf("%g", est.MeanWait),
				fmt.Sprintf("%g", est.WaitHalfWidth),
				fmt.Sprintf("%g", est.MeanNumber),
				fmt.Sprintf("%g", est.NumberHalfWidth),
				fmt.Sprintf("%g", est.MeanPreempt),
				fmt.Sprintf("%g", est.PreemptHalfWidth),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("failed to write output row: %w", err)
			}
		}
	}
	return w.Error()
}

// PrintTrajectory writes the epoch-by-epoch belief path to stdout.
func PrintTrajectory(trajectory []sim.EpochRecord, dynamic bool) {
	for epoch, rec := range trajectory {
		if dynamic {
			fmt.Printf("epoch=%d phi=%.6g incumbent=%.6g priority=%.6g (exp %.6g) general=%.6g (exp %.6g)\n",
				epoch, rec.Phi,
				rec.IncumbentWait,
				rec.PriorityWait, rec.PriorityExpected,
				rec.GeneralWait, rec.GeneralExpected)
			continue
		}
		fmt.Printf("epoch=%d phi=%.6g (+/- %.3g)\n", epoch, rec.Phi, rec.PhiHalfWidth)
	}
}

// WriteTrajectoryCSV appends one row per epoch. Replicated games emit
// [phi, CI]; dynamic games emit the realized and expected waits as well.
func WriteTrajectoryCSV(path string, trajectory []sim.EpochRecord, dynamic bool) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	for _, rec := range trajectory {
		var row []string
		if dynamic {
			row = []string{
				fmt.Sprintf("%g", rec.Phi),
				fmt.Sprintf("%g", rec.IncumbentWait),
				fmt.Sprintf("%g", rec.PriorityWait),
				fmt.Sprintf("%g", rec.PriorityExpected),
				fmt.Sprintf("%g", rec.GeneralWait),
				fmt.Sprintf("%g", rec.GeneralExpected),
			}
		} else {
			row = []string{
				fmt.Sprintf("%g", rec.Phi),
				fmt.Sprintf("%g", rec.PhiHalfWidth),
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write trajectory row: %w", err)
		}
	}
	return w.Error()
}
