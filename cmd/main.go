/*
Copyright 2026 Paygate Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/paygate-io/paygate"
	"github.com/paygate-io/paygate/config"
	"github.com/paygate-io/paygate/database"
	"github.com/paygate-io/paygate/internal/notification"
)

// Paygate wraps the root Cobra command for the CLI.
type Paygate struct {
	cmd *cobra.Command
}

// paygateInstance carries the service and configuration shared by all
// subcommands after preRun.
type paygateInstance struct {
	paygate *paygate.Paygate
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the service before any
// subcommand executes.
func preRun(app *paygateInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig("paygate.json")
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newPaygate, err := setupPaygate(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.paygate = newPaygate
		app.cnf = cnf

		return nil
	}
}

// setupPaygate creates the service on top of a fresh datasource connection.
func setupPaygate(cfg *config.Configuration) (*paygate.Paygate, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newPaygate, err := paygate.NewPaygate(db)
	if err != nil {
		return nil, fmt.Errorf("error creating paygate: %v", err)
	}
	return newPaygate, nil
}

// NewCLI assembles the command tree: server, workers and migrations.
func NewCLI() *Paygate {
	var configFile string
	b := &paygateInstance{}

	var rootCmd = &cobra.Command{
		Use:   "paygate",
		Short: "Crypto payment gateway",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./paygate.json", "Configuration file for paygate")

	rootCmd.PersistentPreRunE = preRun(b)

	rootCmd.AddCommand(serverCommands(b))
	rootCmd.AddCommand(workerCommands(b))
	rootCmd.AddCommand(migrateCommands(b))

	return &Paygate{cmd: rootCmd}
}

func (w Paygate) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
