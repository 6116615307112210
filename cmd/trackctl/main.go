// trackctl is a small companion CLI for the activity tracker: it reads the
// same backend and prints per-category reports without starting the GUI.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"activitytracker/internal/db"
	"activitytracker/internal/report"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	period  string
	user    string
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "trackctl",
	Short: "Reporting companion for the activity tracker backend",
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print time spent per activity category",
	RunE: func(cmd *cobra.Command, args []string) error {
		connString := viper.GetString("database.url")
		if connString == "" {
			return fmt.Errorf("database.url is not set (config file or DATABASE_URL)")
		}

		tz := viper.GetString("timezone")
		if tz == "" {
			tz = "America/Sao_Paulo"
		}
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}

		from, to, err := report.Range(period, time.Now(), loc)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		database, err := db.New(ctx, connString)
		if err != nil {
			return fmt.Errorf("connecting to backend: %w", err)
		}
		defer database.Close()

		activities, err := database.ListActivities(ctx, user, from, to)
		if err != nil {
			return fmt.Errorf("listing sessions: %w", err)
		}

		if format == "csv" {
			return report.WriteCSV(os.Stdout, activities)
		}
		fmt.Print(report.FormatTable(report.Summarize(activities)))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.trackctl.yaml)")
	reportCmd.Flags().StringVar(&period, "period", report.PeriodToday, "today, week or month")
	reportCmd.Flags().StringVar(&user, "user", "", "only include this user's sessions")
	reportCmd.Flags().StringVar(&format, "format", "text", "text or csv")
	rootCmd.AddCommand(reportCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".trackctl")
	}

	viper.AutomaticEnv() // read in environment variables that match
	viper.BindEnv("database.url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
