package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/tradecalc/internal/profile"
)

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "분석 프로파일 관리",
	Long: `Inspects analytics profile YAML files.

Subcommands:
  validate  - 프로파일 검증 (오류 + 경고)
  hash      - 프로파일 해시 출력 (캐시 키에 사용)

Example:
  go run ./cmd/tradecalc profile validate config/profile/default.yaml
  go run ./cmd/tradecalc profile hash config/profile/default.yaml`,
}

var (
	profileValidateCmd = &cobra.Command{
		Use:   "validate [path]",
		Short: "프로파일 검증",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileValidate,
	}

	profileHashCmd = &cobra.Command{
		Use:   "hash [path]",
		Short: "프로파일 해시 출력",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileHash,
	}
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileValidateCmd, profileHashCmd)
}

func runProfileValidate(cmd *cobra.Command, args []string) error {
	p, _, err := profile.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✅ %s (profile_id=%s, version=%s)\n", args[0], p.Meta.ProfileID, p.Meta.Version)
	for _, w := range profile.Warn(p) {
		fmt.Fprintf(out, "⚠️  [%s] %s\n", w.Code, w.Message)
	}
	return nil
}

func runProfileHash(cmd *cobra.Command, args []string) error {
	p, _, err := profile.Load(args[0])
	if err != nil {
		return err
	}
	hash, err := profile.Hash(p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
