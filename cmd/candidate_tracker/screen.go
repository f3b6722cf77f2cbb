package main

import (
	"fmt"
	"os"

	"github.com/jonathan/candidate-tracker/internal/observability"
	"github.com/jonathan/candidate-tracker/internal/types"
	"github.com/spf13/cobra"
)

var (
	screenName       string
	screenEmail      string
	screenRole       string
	screenJobFile    string
	screenResumeFile string
	screenActor      string
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Score a resume against a job description and record the candidate",
	Long:  "Read a job description and a resume from text or HTML files, score them with the configured scorer, and record the classified candidate.",
	RunE:  runScreen,
}

func init() {
	screenCmd.Flags().StringVarP(&screenName, "name", "n", "", "Candidate name (required)")
	screenCmd.Flags().StringVarP(&screenEmail, "email", "e", "", "Candidate email (required)")
	screenCmd.Flags().StringVarP(&screenRole, "role", "r", "", "Role applied for (required)")
	screenCmd.Flags().StringVarP(&screenJobFile, "job", "j", "", "Path to job description file (required)")
	screenCmd.Flags().StringVarP(&screenResumeFile, "resume", "c", "", "Path to resume text file (required)")
	screenCmd.Flags().StringVar(&screenActor, "actor", "cli", "Operator name recorded in the audit trail")

	for _, name := range []string{"name", "email", "role", "job", "resume"} {
		_ = screenCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, _ []string) error {
	jobDescription, err := os.ReadFile(screenJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}
	resume, err := os.ReadFile(screenResumeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	a, err := buildApp(cmd.Context(), cfg, zlog)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := a.screening.Screen(cmd.Context(), &types.ScreenRequest{
		Name:           screenName,
		Email:          screenEmail,
		Role:           screenRole,
		JobDescription: string(jobDescription),
		ResumeText:     string(resume),
	}, screenActor)
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintOutcome(out)
	return nil
}
