package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/nislab/spectrum-sharing-simulations/sim"
)

var (
	// CLI flags for the queue scenario
	seed         int64   // Seed for the partitioned RNG streams
	logLevel     string  // Log verbosity level
	scenarioFile string  // Optional YAML scenario overriding the flags
	lam          float64 // Customer arrival rate
	mu           float64 // Customer service rate (1 over first moment)
	disp         float64 // Customer dispersion k: second moment is k/mu^2
	dist         string  // Customer service distribution kind
	phi          float64 // Fraction of customers joining the priority tier
	incumbent    string  // Incumbent mode (none, poisson, thinned, trace)
	lamIn        float64 // Incumbent arrival rate
	muIn         float64 // Incumbent service rate
	dispIn       float64 // Incumbent dispersion
	distIn       string  // Incumbent service distribution kind
	theta        float64 // Incumbent fraction for the thinned mode
	gapsFile     string  // CSV trace of inter-breakdown gaps
	holdsFile    string  // CSV trace of breakdown hold durations
	capacity     int     // Concurrent service slots
	simTime      float64 // Simulation horizon
	frac         float64 // Warm-up fraction of the horizon
	iterations   int     // Independent replications per estimate
	alpha        float64 // CI is 100*(1-alpha) percent
	workers      int     // Replication fan-out (0 = GOMAXPROCS)
	output       string  // Output CSV path

	// CLI flags for the learning game
	rounds       int     // Epochs to play
	step         float64 // Damped best-response step
	fee          float64 // Cost to join the priority tier
	preemptValue float64 // Vp, preemption exposure price
	preemptCost  float64 // Cp, per-preemption penalty
	variant      string  // Cost variant (wait-fee, wait-preemption)
	tolerance    float64 // Cost-equality tolerance; ties leave phi unchanged
	dynamic      bool    // Single-run epochs driven by analytic costs

	// Phi sweep
	phiList []float64 // Phi values for the sweep subcommand
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "spectrum-sim",
	Short: "Discrete-event simulator for spectrum-sharing priority queues",
}

// buildScenario resolves the scenario: the YAML file when given, the flags
// otherwise, with breakdown traces loaded on top in either case.
func buildScenario() *sim.Scenario {
	var sc *sim.Scenario
	if scenarioFile != "" {
		loaded, err := sim.LoadScenario(scenarioFile)
		if err != nil {
			logrus.Fatalf("Unable to load scenario: %v", err)
		}
		sc = loaded
	} else {
		sc = &sim.Scenario{
			Lam:        lam,
			Mu:         mu,
			K:          disp,
			Dist:       sim.DistKind(dist),
			Phi:        phi,
			Incumbent:  sim.IncumbentMode(incumbent),
			LamIn:      lamIn,
			MuIn:       muIn,
			KIn:        dispIn,
			DistIn:     sim.DistKind(distIn),
			Theta:      theta,
			Capacity:   capacity,
			SimTime:    simTime,
			Frac:       frac,
			Iterations: iterations,
			Alpha:      alpha,
			Workers:    workers,
		}
	}
	if sc.SimTime == 0 && sc.Lam > 0 {
		// Scale the horizon so roughly 500,000 customers are generated.
		sc.SimTime = 5e5 / sc.Lam
	}
	if sc.Incumbent == sim.IncumbentTrace {
		gaps, err := ReadTraceCSV(gapsFile)
		if err != nil {
			logrus.Fatalf("Unable to read gap trace: %v", err)
		}
		holds, err := ReadTraceCSV(holdsFile)
		if err != nil {
			logrus.Fatalf("Unable to read hold trace: %v", err)
		}
		sc.BreakdownGaps, sc.BreakdownHolds = gaps, holds
	}
	return sc
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// runCmd estimates the per-tier waiting, population, and preemption
// statistics at a fixed phi across independent replications.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the replication study at a fixed phi",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		sc := buildScenario()
		result, err := sim.RunReplications(sc, sim.NewSimulationKey(seed))
		if err != nil {
			logrus.Fatalf("Replication study failed: %v", err)
		}
		PrintStudy(result)
		if output != "" {
			if err := WriteStudyCSV(output, []*sim.StudyResult{result}); err != nil {
				logrus.Fatalf("Unable to write results: %v", err)
			}
		}
	},
}

// sweepCmd repeats the replication study for each phi in a list.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run the replication study across a list of phi values",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		sc := buildScenario()
		results := make([]*sim.StudyResult, 0, len(phiList))
		for _, p := range phiList {
			point := *sc
			point.Phi = p
			result, err := sim.RunReplications(&point, sim.NewSimulationKey(seed))
			if err != nil {
				logrus.Fatalf("Replication study failed at phi=%g: %v", p, err)
			}
			PrintStudy(result)
			results = append(results, result)
		}
		if output != "" {
			if err := WriteStudyCSV(output, results); err != nil {
				logrus.Fatalf("Unable to write results: %v", err)
			}
		}
	},
}

// learnCmd plays the belief-update game and writes the phi trajectory.
var learnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Play the strategic learning game over the belief phi",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		sc := buildScenario()
		cfg := sim.LearnConfig{
			Variant:      sim.CostVariant(variant),
			Rounds:       rounds,
			Step:         step,
			Fee:          fee,
			PreemptValue: preemptValue,
			PreemptCost:  preemptCost,
			Tolerance:    tolerance,
		}
		key := sim.NewSimulationKey(seed)
		var trajectory []sim.EpochRecord
		var err error
		if dynamic {
			trajectory, err = sim.RunDynamicLearning(sc, cfg, key)
		} else {
			trajectory, err = sim.RunLearning(sc, cfg, key)
		}
		if err != nil {
			logrus.Fatalf("Learning game failed: %v", err)
		}
		PrintTrajectory(trajectory, dynamic)
		if output != "" {
			if err := WriteTrajectoryCSV(output, trajectory, dynamic); err != nil {
				logrus.Fatalf("Unable to write trajectory: %v", err)
			}
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	pf := rootCmd.PersistentFlags()
	pf.Int64Var(&seed, "seed", 42, "Seed for the partitioned RNG streams")
	pf.StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	pf.StringVar(&scenarioFile, "scenario", "", "YAML scenario file (overrides the rate flags)")
	pf.StringVar(&output, "output", "", "CSV file to append results to")

	// Customer stream
	pf.Float64Var(&lam, "lam", 0.0627845, "Customer arrival rate")
	pf.Float64Var(&mu, "mu", 0.627845, "Customer service rate (1 over first moment)")
	pf.Float64Var(&disp, "k", 3.90054, "Customer dispersion: second moment of service is k/mu^2")
	pf.StringVar(&dist, "dist", "gamma", "Customer service distribution (deterministic, exponential, gamma)")
	pf.Float64Var(&phi, "phi", 0.5, "Fraction of customers joining the priority tier")

	// Incumbent tier
	pf.StringVar(&incumbent, "incumbent", "poisson", "Incumbent mode (none, poisson, thinned, trace)")
	pf.Float64Var(&lamIn, "lam-in", 0.00163492, "Incumbent arrival rate")
	pf.Float64Var(&muIn, "mu-in", 0.0326984, "Incumbent service rate")
	pf.Float64Var(&dispIn, "k-in", 1.85499, "Incumbent dispersion")
	pf.StringVar(&distIn, "dist-in", "gamma", "Incumbent service distribution")
	pf.Float64Var(&theta, "theta", 0, "Incumbent fraction for the thinned mode")
	pf.StringVar(&gapsFile, "gaps", "interArrival.csv", "CSV trace of inter-breakdown gaps")
	pf.StringVar(&holdsFile, "holds", "sweepPeriod.csv", "CSV trace of breakdown hold durations")

	// Engine
	pf.IntVar(&capacity, "capacity", 1, "Concurrent service slots")
	pf.Float64Var(&simTime, "sim-time", 0, "Simulation horizon (0 scales to ~500k customers)")
	pf.Float64Var(&frac, "frac", 0.05, "Warm-up fraction of the horizon")
	pf.IntVar(&iterations, "iterations", 30, "Independent replications per estimate")
	pf.Float64Var(&alpha, "alpha", 0.05, "Confidence interval is 100*(1-alpha) percent")
	pf.IntVar(&workers, "workers", 0, "Replication fan-out (0 = GOMAXPROCS)")

	// Learning game
	learnCmd.Flags().IntVar(&rounds, "rounds", 50, "Epochs to play")
	learnCmd.Flags().Float64Var(&step, "step", 0.05, "Damped best-response step in (0,1]")
	learnCmd.Flags().Float64Var(&fee, "fee", 0.582691, "Cost to join the priority tier")
	learnCmd.Flags().Float64Var(&preemptValue, "preempt-value", 1.4, "Preemption exposure price Vp")
	learnCmd.Flags().Float64Var(&preemptCost, "preempt-cost", 0, "Per-preemption penalty Cp")
	learnCmd.Flags().StringVar(&variant, "variant", "wait-fee", "Cost variant (wait-fee, wait-preemption)")
	learnCmd.Flags().Float64Var(&tolerance, "tolerance", 0, "Cost-equality tolerance; ties leave phi unchanged")
	learnCmd.Flags().BoolVar(&dynamic, "dynamic", false, "Single-run epochs driven by analytic costs")

	// Sweep
	sweepCmd.Flags().Float64SliceVar(&phiList, "phi-list",
		[]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9},
		"Comma-separated phi values to sweep")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(learnCmd)
}
