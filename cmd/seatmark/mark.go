package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"seatmark/internal/marker"
	"seatmark/internal/service/excel"
)

var (
	markFile     string
	markText     string
	markTextFile string
	markDate     string
	markOut      string
	markColor    string
)

var markCmd = &cobra.Command{
	Use:   "mark",
	Short: "在命令行中处理一个座席表",
	Long: `读取座席表工作簿与座席指定文本，输出只含当日 sheet 的工作簿。

文本来源二选一：--text 直接给出，或 --text-file 指定文件（"-" 表示标准输入）。

Examples:
  seatmark mark --file map.xlsx --text-file seats.txt --date 2025-01-02
  pbpaste | seatmark mark --file map.xlsx --text-file - --out ./out`,
	Args: cobra.NoArgs,
	RunE: runMark,
}

func init() {
	markCmd.Flags().StringVarP(&markFile, "file", "f", "", "座席表工作簿 (.xlsx)")
	markCmd.Flags().StringVar(&markText, "text", "", "座席指定文本")
	markCmd.Flags().StringVar(&markTextFile, "text-file", "", "座席指定文本文件，- 表示标准输入")
	markCmd.Flags().StringVar(&markDate, "date", "", "试合日期 YYYY-MM-DD (默认今天)")
	markCmd.Flags().StringVarP(&markOut, "out", "o", ".", "输出目录")
	markCmd.Flags().StringVar(&markColor, "color", "", "涂色 RGB (默认取配置)")
	_ = markCmd.MarkFlagRequired("file")
	markCmd.MarkFlagsMutuallyExclusive("text", "text-file")
	rootCmd.AddCommand(markCmd)
}

func runMark(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig()

	text, err := readSeatText(cmd.InOrStdin())
	if err != nil {
		return err
	}
	workbook, err := os.ReadFile(markFile)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}
	date, err := marker.ParseDate(markDate, time.Now())
	if err != nil {
		return err
	}

	color := cfg.Marking.HighlightColor
	if markColor != "" {
		color = markColor
	}
	runner := marker.NewRunner(marker.Options{
		Layers:             cfg.Sheets,
		HighlightColor:     color,
		ScanTimeout:        cfg.Marking.ScanTimeout(),
		ResolveSheetSuffix: cfg.Marking.ResolveSheetSuffix,
	}, logger)

	res, err := runner.Run(context.Background(), marker.Input{
		Workbook: workbook,
		Filename: filepath.Base(markFile),
		Text:     text,
		Date:     date,
	})
	if err != nil {
		var se *excel.StructuralError
		if errors.As(err, &se) {
			for _, name := range se.Missing {
				fmt.Fprintf(cmd.ErrOrStderr(), "  missing sheet: %s\n", name)
			}
		}
		return err
	}

	if err := os.MkdirAll(markOut, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outPath := filepath.Join(markOut, res.OutputName)
	if err := os.WriteFile(outPath, res.Output, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Debug("output written", zap.String("path", outPath))

	printResult(cmd.OutOrStdout(), res, outPath)
	return nil
}

func readSeatText(stdin io.Reader) (string, error) {
	switch {
	case markTextFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	case markTextFile != "":
		b, err := os.ReadFile(markTextFile)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return string(b), nil
	default:
		return markText, nil
	}
}

func printResult(w io.Writer, res *marker.Result, outPath string) {
	fmt.Fprintf(w, "指定 %d 件 / 塗り %d 件 / 該当なし %d 件\n",
		len(res.Requests), len(res.Matched), len(res.Unmatched))
	if res.Collisions > 0 {
		fmt.Fprintf(w, "警告: 座席表に重複キーが %d 件あります\n", res.Collisions)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(res.Matched) > 0 {
		fmt.Fprintln(tw, "\nクラス\t列\t座席\tセル")
		for _, m := range res.Matched {
			fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", m.Request.ClassName, m.Request.Row, m.Request.Seat, m.Coord.CellName())
		}
	}
	if len(res.Unmatched) > 0 {
		fmt.Fprintln(tw, "\n該当なし\t列\t座席\t")
		for _, u := range res.Unmatched {
			fmt.Fprintf(tw, "%s\t%d\t%d\t\n", u.ClassName, u.Row, u.Seat)
		}
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\n出力: %s\n", outPath)
}
