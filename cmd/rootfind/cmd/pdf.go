package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"rootfinder/internal/config"
	"rootfinder/internal/pdfutil"
)

func newPDFCmd(settings func() config.Config) *cobra.Command {
	c := &cobra.Command{
		Use:   "pdf",
		Short: "Объединение PDF и извлечение страниц",
	}
	c.AddCommand(newPDFMergeCmd(settings), newPDFExtractCmd())
	return c
}

func newPDFMergeCmd(settings func() config.Config) *cobra.Command {
	var output string

	c := &cobra.Command{
		Use:     "merge <file.pdf>...",
		Short:   "Склеить файлы в указанном порядке",
		Example: "  rootfind pdf merge -o all.pdf a.pdf b.pdf c.pdf",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit := settings().PDF.MaxFiles; len(args) > limit {
				return fmt.Errorf("не больше %d файлов за раз", limit)
			}
			inputs := make([]io.ReadSeeker, 0, len(args))
			for _, name := range args {
				b, err := os.ReadFile(name)
				if err != nil {
					return err
				}
				inputs = append(inputs, bytes.NewReader(b))
			}

			var out bytes.Buffer
			if err := pdfutil.Merge(inputs, &out); err != nil {
				return err
			}
			if err := os.WriteFile(output, out.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d файлов объединено\n", output, len(args))
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "merged.pdf", "итоговый файл")
	return c
}

func newPDFExtractCmd() *cobra.Command {
	var output, pages string

	c := &cobra.Command{
		Use:   "extract <file.pdf>",
		Short: "Оставить только выбранные страницы",
		Long: `Страницы задаются списком номеров и диапазонов через запятую:
"1-3,5,8-" — с первой по третью, пятая и с восьмой до конца.
Страницы выводятся в порядке документа, повторы убираются.`,
		Example: "  rootfind pdf extract -p 1-3,5 -o part.pdf book.pdf",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var out bytes.Buffer
			got, err := pdfutil.Extract(in, pages, &out)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out.Bytes(), 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: страницы %v\n", output, got)
			return nil
		},
	}
	c.Flags().StringVarP(&output, "output", "o", "pages.pdf", "итоговый файл")
	c.Flags().StringVarP(&pages, "pages", "p", "", "страницы, например 1-3,5,8-")
	_ = c.MarkFlagRequired("pages")
	return c
}
