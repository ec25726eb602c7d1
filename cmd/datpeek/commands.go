package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/tiff"

	"datpeek/cmd/datpeek/cli"
	"datpeek/internal/container"
	"datpeek/internal/errors"
	"datpeek/internal/siblings"
	"datpeek/internal/storage"
	"datpeek/internal/tui"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var errGUIUnavailable = errors.New("GUI support is not part of this build, use datpeek tui")

// NewGUICmd opens containers in the desktop previewer.
func NewGUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gui [files...]",
		Short: "Preview containers in a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(args)
		},
	}
}

// NewTUICmd opens containers in the terminal previewer.
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui <files...>",
		Short: "Preview containers in the terminal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cfg, args)
		},
	}
}

// NewDecodeCmd writes the unmasked image of a container.
func NewDecodeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Write the decoded image of a container",
		Long: `Unmask a container and write the image it holds. Without --output the
image is written next to the container, named after it with the extension of
its label.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store := storage.NewLocal()

			data, err := store.ReadFile(ctx, args[0])
			if err != nil {
				return readError(err, args[0])
			}
			img := container.Decode(data)

			target := output
			if target == "" {
				target = decodedName(args[0], img.Codec)
			}
			if err := store.WriteFile(ctx, target, img.Data); err != nil {
				return err
			}

			cli.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Decoded %s to %s (%s, key 0x%02X)",
				filepath.Base(args[0]), target, img.Codec, img.Key))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "where to write the image")
	return cmd
}

// NewInfoCmd describes a container.
func NewInfoCmd() *cobra.Command {
	var dataURI bool

	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Describe a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			store := storage.NewLocal()

			data, err := store.ReadFile(ctx, args[0])
			if err != nil {
				return readError(err, args[0])
			}
			meta, err := store.Stat(ctx, args[0])
			if err != nil {
				return readError(err, args[0])
			}
			img := container.Decode(data)

			lines := []string{
				fmt.Sprintf("File     %s", args[0]),
				fmt.Sprintf("Label    %s (%s)", img.Codec, img.MediaType()),
				fmt.Sprintf("Key      0x%02X", img.Key),
				fmt.Sprintf("Size     %s", humanize.Bytes(uint64(meta.Size))),
				fmt.Sprintf("Created  %s (%s)", meta.CreatedAt.Format(cfg.Export.TimeFormat), humanize.Time(meta.CreatedAt)),
			}
			if conf, format, err := image.DecodeConfig(bytes.NewReader(img.Data)); err != nil {
				lines = append(lines, "Image    not decodable")
			} else {
				lines = append(lines, fmt.Sprintf("Image    %s %dx%d", format, conf.Width, conf.Height))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.DrawBox(strings.Join(lines, "\n")))
			if dataURI {
				fmt.Fprintln(cmd.OutOrStdout(), img.DataURI())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dataURI, "data-uri", false, "also print the image as a data URI")
	return cmd
}

// NewLsCmd lists the containers of a directory in navigation order.
func NewLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [directory]",
		Short: "List containers in navigation order",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			dir, err := filepath.Abs(dir)
			if err != nil {
				return err
			}

			store := storage.NewLocal()
			index, err := siblings.New(dir, cfg.Container.Extension, store, siblings.Sorted(cfg.Navigation.SortSiblings))
			if err != nil {
				return err
			}
			listing, err := index.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			cli.PrintHeader(out, fmt.Sprintf("%d containers in %s", len(listing), dir))
			for _, path := range listing {
				meta, err := store.Stat(ctx, path)
				if err != nil {
					cli.PrintError(out, err.Error())
					continue
				}
				fmt.Fprintf(out, "%-40s %10s  %s\n", filepath.Base(path), humanize.Bytes(uint64(meta.Size)), humanize.Time(meta.CreatedAt))
			}
			return nil
		},
	}
}

// decodedName names the image decoded from path after its label.
func decodedName(path string, codec container.Codec) string {
	ext := "." + codec.String()
	if codec == container.JPEG {
		ext = ".jpg"
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// readError rewords the storage errors a user can act on.
func readError(err error, path string) error {
	switch {
	case errors.IsFileNotFound(err):
		return errors.Newf("no such container: %s", path)
	case errors.IsFileAccessDenied(err):
		return errors.Newf("permission denied reading %s", path)
	}
	return err
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
