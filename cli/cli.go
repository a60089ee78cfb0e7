package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/droidgen/droidgen/config"
	"github.com/droidgen/droidgen/llm"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "droidgen",
	Short: "droidgen turns an app idea into an Android project",
	Long:  `droidgen is a CLI tool that uses AI to turn a free-text app idea into a populated Android Studio project skeleton.`,
}

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate an Android project from an idea",
	Run: func(cmd *cobra.Command, args []string) {
		flags, err := parseGenFlags(cmd)
		if err != nil {
			fmt.Printf("Error parsing flags: %v\n", err)
			os.Exit(1)
		}

		model, err := newGenerateModel(flags)
		if err != nil {
			fmt.Printf("Error initializing model: %v\n", err)
			os.Exit(1)
		}

		p := tea.NewProgram(model)
		if _, err := p.Run(); err != nil {
			fmt.Printf("Error running program: %v\n", err)
			os.Exit(1)
		}

		model.Shutdown()
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List local model presets",
	Run: func(cmd *cobra.Command, args []string) {
		nameStyle := lipgloss.NewStyle().Bold(true)
		for _, m := range llm.LocalModels() {
			fmt.Printf("%s  %s  (%s)\n", nameStyle.Render(m.Name), m.Model, m.Notes)
		}
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update the backend configuration",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := configPathFlag(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		changed := false
		setString := func(flag string, target *string) {
			if cmd.Flags().Changed(flag) {
				v, _ := cmd.Flags().GetString(flag)
				*target = v
				changed = true
			}
		}
		setString("mode", &cfg.Mode)
		setString("provider", &cfg.API.Provider)
		setString("model", &cfg.API.Model)
		setString("key", &cfg.API.Key)
		setString("local-model", &cfg.Local.Model)
		setString("local-host", &cfg.Local.Host)

		if changed {
			if err := cfg.Save(path); err != nil {
				fmt.Printf("Error saving config: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Configuration saved.")
			return
		}

		key := "(not set)"
		if cfg.API.Key != "" {
			key = "********"
		}
		fmt.Printf("mode:        %s\n", cfg.Mode)
		fmt.Printf("api:         %s / %s (key %s)\n", cfg.API.Provider, cfg.API.Model, key)
		fmt.Printf("local:       %s @ %s\n", cfg.Local.Model, cfg.Local.Host)
		fmt.Printf("template:    %s\n", cfg.TemplateDir)
		fmt.Printf("output:      %s\n", cfg.OutputDir)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously generated projects",
	Run: func(cmd *cobra.Command, args []string) {
		path, err := configPathFlag(cmd)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		if len(cfg.Runs) == 0 {
			fmt.Println("No projects generated yet.")
			return
		}

		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
		for _, run := range cfg.Runs {
			idea := run.Idea
			if len(idea) > 60 {
				idea = idea[:57] + "..."
			}
			fmt.Printf("%s  %s  %s\n    %s\n",
				run.CreatedAt.Format("2006-01-02 15:04"),
				nameStyle.Render(run.AppName),
				run.ProjectPath,
				strings.TrimSpace(idea))
		}
	},
}

func init() {
	rootCmd.AddCommand(genCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)

	genCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")

	configCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")
	configCmd.Flags().String("mode", "", "Backend mode: 'local' or 'api'")
	configCmd.Flags().String("provider", "", "Remote provider: 'OpenRouter' or 'Gemini'")
	configCmd.Flags().String("model", "", "Remote model name")
	configCmd.Flags().String("key", "", "Remote provider API key")
	configCmd.Flags().String("local-model", "", "Local model name")
	configCmd.Flags().String("local-host", "", "Local runtime host URL")

	historyCmd.Flags().StringP("config", "c", "", "Path to custom configuration file")
}

func configPathFlag(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func parseGenFlags(cmd *cobra.Command) (genFlags, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return genFlags{}, err
	}
	return genFlags{
		config: configPath,
	}, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
