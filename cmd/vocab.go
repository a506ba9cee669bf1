package cmd

import (
	"fmt"
	"strconv"

	"github.com/sitelabel/annotator/internal/vocabulary"
	"github.com/spf13/cobra"
)

func newVocabCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage the noun and verb lists",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [nouns|verbs]",
			Short: "Print the lists with their quick-select numbers",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				kinds := []vocabulary.Kind{vocabulary.Nouns, vocabulary.Verbs}
				if len(args) == 1 {
					kind, err := parseKind(args[0])
					if err != nil {
						return err
					}
					kinds = []vocabulary.Kind{kind}
				}

				out := cmd.OutOrStdout()
				for _, kind := range kinds {
					fmt.Fprintf(out, "%s:\n", kind)
					for i, term := range a.services.Vocabulary.Terms(kind) {
						fmt.Fprintf(out, "  %d. %s\n", i+1, term)
					}
				}
				return nil
			},
		},
		newVocabEditCmd(a, "add", "Append a term", a.vocabAdd),
		newVocabEditCmd(a, "remove", "Remove a term", a.vocabRemove),
		newVocabEditCmd(a, "up", "Move a term one place up", a.vocabUp),
		newVocabEditCmd(a, "down", "Move a term one place down", a.vocabDown),
		newVocabPickCmd(a),
	)
	return cmd
}

func (a *app) vocabAdd(k vocabulary.Kind, t string) (bool, error) {
	return a.services.Vocabulary.Add(k, t)
}

func (a *app) vocabRemove(k vocabulary.Kind, t string) (bool, error) {
	return a.services.Vocabulary.Remove(k, t)
}

func (a *app) vocabUp(k vocabulary.Kind, t string) (bool, error) {
	return a.services.Vocabulary.MoveUp(k, t)
}

func (a *app) vocabDown(k vocabulary.Kind, t string) (bool, error) {
	return a.services.Vocabulary.MoveDown(k, t)
}

func newVocabEditCmd(a *app, use, short string, fn func(vocabulary.Kind, string) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <nouns|verbs> <term>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}

			changed, err := fn(kind, args[1])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged\n", kind)
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s:", kind)
			for i, term := range a.services.Vocabulary.Terms(kind) {
				fmt.Fprintf(cmd.OutOrStdout(), " %d.%s", i+1, term)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newVocabPickCmd(a *app) *cobra.Command {
	var noun string

	cmd := &cobra.Command{
		Use:   "pick <number>",
		Short: "Resolve a quick-select number to a noun, or to a verb once --noun is set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("quick-select number must be 1-9, got %q", args[0])
			}

			kind, term, ok := a.services.Vocabulary.QuickSelect(n, noun)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "no %s at %d\n", kind, n)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", kind, term)
			return nil
		},
	}

	cmd.Flags().StringVar(&noun, "noun", "", "the noun already chosen")
	return cmd
}

func parseKind(s string) (vocabulary.Kind, error) {
	kind, ok := vocabulary.ParseKind(s)
	if !ok {
		return "", fmt.Errorf("unknown vocabulary %q, expected nouns or verbs", s)
	}
	return kind, nil
}
