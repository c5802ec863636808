// Package cmd — команды CLI rootfind.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rootfinder/internal/config"
	"rootfinder/internal/symbolic"
)

// NewRootCmd собирает дерево команд
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "rootfind",
		Short: "Поиск корней уравнений и работа с PDF",
		Long: `rootfind решает f(x) = 0 методами бисекции, хорд, Ньютона-Рафсона
и секущих, подбирает отрезки со сменой знака и склеивает/режет PDF.

Выражения: x**3 - x - 2, sin(x) - x/2, exp(-x) - x. Степень можно писать
и через ^, она связывает сильнее унарного минуса: -x^2 == -(x^2).
Константы: pi, e. Функции: ` + strings.Join(symbolic.Functions(), ", ") + ".",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML-файл конфигурации")

	// конфигурация нужна подкомандам за значениями по умолчанию
	cfg := config.Default()
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	}
	settings := func() config.Config { return cfg }

	for _, m := range solveCommands(settings) {
		root.AddCommand(m)
	}
	root.AddCommand(newScanCmd(settings), newPDFCmd(settings))
	return root
}

// Execute запускает CLI
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
}
