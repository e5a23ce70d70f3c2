package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fsdevblog/shortlinks/internal/app"
	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/keycodec"
	"github.com/fsdevblog/shortlinks/internal/services"
)

// withApp открывает хранилище на время выполнения fn.
func withApp(cmd *cobra.Command, fn func(conf *config.Config, a *app.App) error) error {
	conf, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd, conf)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), *conf, logger)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer func() {
		_ = a.Close()
	}()
	return fn(conf, a)
}

func shortBase(conf *config.Config) string {
	if conf.BaseURL != nil {
		return conf.BaseURL.String()
	}
	return "http://" + conf.ServerAddress
}

func newCreateCommand() *cobra.Command {
	var rawURL, customKey string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a short link",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(conf *config.Config, a *app.App) error {
				link, err := a.Services().LinkService.Create(cmd.Context(), rawURL, customKey)
				if err != nil {
					return err //nolint:wrapcheck
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), services.ShortURL(shortBase(conf), link.Key))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rawURL, "url", "", "Целевая ссылка")
	cmd.Flags().StringVar(&customKey, "custom", "", "Пользовательский ключ")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve KEY",
		Short: "Print the target of a short key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(_ *config.Config, a *app.App) error {
				link, err := a.Services().LinkService.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err //nolint:wrapcheck
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), link.URL)
				return nil
			})
		},
	}
}

func newEncodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "encode ID",
		Short: "Encode a numeric id into a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse id %q: %w", args[0], err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), keycodec.Encode(id))
			return nil
		},
	}
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode KEY",
		Short: "Decode a key into its numeric id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := keycodec.Decode(args[0])
			if err != nil {
				return fmt.Errorf("decode %q: %w", args[0], err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}
