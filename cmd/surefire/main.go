// Command surefire is a demo CLI around the surefire package: it
// validates config pairs and steps a machine against the wall clock.
// The core package has no dependency on this binary.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"j5.nz/surefire"
)

func main() {
	root := &cobra.Command{
		Use:   "surefire",
		Short: "Validate and run Surefire state-vector / state-machine configs",
	}
	root.AddCommand(newValidateCmd(), newRunCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <sv.cfg> [sm.cfg]",
		Short: "Tokenize, parse, and assemble one or two config files",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sv, err := surefire.CreateStateVector(args[0])
			if err != nil {
				logrus.WithError(err).Error("state vector did not assemble")
				return err
			}
			logrus.WithField("file", args[0]).Info("state vector assembled")
			if len(args) == 2 {
				m, err := surefire.CreateStateMachine(args[1], sv)
				if err != nil {
					logrus.WithError(err).Error("state machine did not assemble")
					return err
				}
				logrus.WithFields(logrus.Fields{
					"file":  args[1],
					"state": m.CurrentState(),
				}).Info("state machine assembled")
			}
			return nil
		},
	}
}

func newRunCmd() *cobra.Command {
	var steps int
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "run <sv.cfg> <sm.cfg>",
		Short: "Build a machine and step it against the wall clock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sv, err := surefire.CreateStateVector(args[0])
			if err != nil {
				return err
			}
			m, err := surefire.CreateStateMachine(args[1], sv)
			if err != nil {
				return err
			}
			for i := 0; i < steps; i++ {
				m.WriteGlobalTime(uint64(time.Now().UnixNano()))
				if err := m.Step(); err != nil {
					logrus.WithError(err).WithField("iteration", i).Error("step failed")
					return err
				}
				logrus.WithFields(logrus.Fields{
					"iteration": i,
					"state":     m.CurrentState(),
				}).Info("stepped")
				time.Sleep(interval)
			}
			fmt.Printf("final state: %d\n", m.CurrentState())
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of steps to run")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "wall-clock delay between steps")
	return cmd
}
