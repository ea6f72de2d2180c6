package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jobsniper-dev/jobsniper/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the candidate profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current profile",
	RunE:  runProfileShow,
}

var profileAddSkillCmd = &cobra.Command{
	Use:   "add-skill <skill>",
	Short: "Add a skill to the profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileAddSkill,
}

var profileRemoveSkillCmd = &cobra.Command{
	Use:   "remove-skill <skill>",
	Short: "Remove a skill from the profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileRemoveSkill,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileAddSkillCmd)
	profileCmd.AddCommand(profileRemoveSkillCmd)
}

func profilePath() string {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		// No config yet is fine for profile edits; fall back to the default
		// location next to the binary.
		return "profile.json"
	}
	return cfg.ProfilePath
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	p, err := profile.Load(profilePath())
	if err != nil {
		return err
	}
	fmt.Print(profile.Summary(p))
	return nil
}

func runProfileAddSkill(cmd *cobra.Command, args []string) error {
	if err := profile.AddSkill(profilePath(), args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("added skill: %s\n", args[0])
	return nil
}

func runProfileRemoveSkill(cmd *cobra.Command, args []string) error {
	if err := profile.RemoveSkill(profilePath(), args[0]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("removed skill: %s\n", args[0])
	return nil
}
