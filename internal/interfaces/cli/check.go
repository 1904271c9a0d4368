package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appreview "github.com/turtacn/meisai-checker/internal/application/review"
	domain "github.com/turtacn/meisai-checker/internal/domain/review"
)

func newCheckCmd() *cobra.Command {
	var (
		guidelinesDir string
		outDir        string
		noLLM         bool
		showTable     bool
	)

	cmd := &cobra.Command{
		Use:   "check <input.docx>",
		Short: "明細書案を自動レビューしてレポートと修正版を出力する",
		Long: "check reads the .docx, runs the heuristic checks and (unless --no-llm)\n" +
			"the semantic review, then writes <stem>_report.json and <stem>_fixed.docx\n" +
			"to the output directory.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}

			rt, err := BuildRuntime(cmd.Context(), cliCtx.Config, cliCtx.Logger, RuntimeOptions{WithSinks: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			res, err := rt.Service.Review(cmd.Context(), &appreview.Input{
				Path:          args[0],
				GuidelinesDir: guidelinesDir,
				OutDir:        outDir,
				UseLLM:        !noLLM,
				Source:        domain.SourceCLI,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCheckResult(out, res.ReportPath, res.FixedPath)
			if showTable && len(res.Suggestions) > 0 {
				fmt.Fprintln(out)
				fmt.Fprint(out, suggestionTable(res.Suggestions))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&guidelinesDir, "guidelines-dir", "", "審査基準/特許法の参照フォルダ (default: guidelines.dir from config)")
	f.StringVar(&outDir, "out-dir", "", "レポート/修正版の出力先 (default: output.dir from config, reports)")
	f.BoolVar(&noLLM, "no-llm", false, "LLMを使わずヒューリスティックのみ実行")
	f.BoolVar(&showTable, "table", false, "指摘一覧を表形式で表示する")
	return cmd
}

//Personal.AI order the ending
