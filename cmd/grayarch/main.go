package main

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/bodgit/grayarch"
	"github.com/bodgit/grayarch/barch"
	"github.com/bodgit/grayarch/bmp"
	"github.com/bodgit/grayarch/raster"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const defaultDB = "grayarch.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newGrayarch(c *cli.Context) (*grayarch.Grayarch, error) {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}

	return grayarch.New(c.String("db"), c.Int("jobs"), logger)
}

func convert(c *cli.Context, files []string, want grayarch.Direction) error {
	for _, file := range files {
		d, err := grayarch.DirectionOf(file)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("%s: %w", file, err), 1)
		}
		if want != 0 && d != want {
			return cli.NewExitError(fmt.Errorf("%s: cannot %s", file, want), 1)
		}
	}

	g, err := newGrayarch(c)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer g.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	statuses, err := g.Convert(ctx, files)
	for _, s := range statuses {
		if s.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", s.Path, s.Message)
			continue
		}
		fmt.Printf("%s -> %s\n", s.Path, s.Output)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func importImage(source, dest string, levels int) error {
	f, err := os.Open(source)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	r, err := raster.Quantize(m, levels)
	if err != nil {
		return err
	}

	return bmp.Store(dest, r)
}

func info(file string) error {
	d, err := grayarch.DirectionOf(file)
	if err != nil {
		return err
	}

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	var width, height int
	switch d {
	case grayarch.Encode:
		if width, height, err = bmp.DecodeConfig(f); err != nil {
			return err
		}
	case grayarch.Decode:
		config, err := barch.DecodeConfig(f)
		if err != nil {
			return err
		}
		width, height = config.Width, config.Height
	}

	fmt.Printf("%s: %dx%d\n", file, width, height)
	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "grayarch"
	app.Usage = "Grayscale bitmap to BARCH conversion utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"GRAYARCH_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to history database, empty to disable",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			EnvVars: []string{"GRAYARCH_JOBS"},
			Value:   grayarch.DefaultJobs,
			Usage:   "number of concurrent conversions",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "encode",
			Usage:       "Compress bitmaps to BARCH",
			Description: "Each FILE.bmp is written as FILEpacked.barch alongside it.",
			ArgsUsage:   "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				return convert(c, c.Args().Slice(), grayarch.Encode)
			},
		},
		{
			Name:        "decode",
			Usage:       "Decompress BARCH files to bitmaps",
			Description: "Each FILE.barch is written as FILEunpacked.bmp alongside it.",
			ArgsUsage:   "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}
				return convert(c, c.Args().Slice(), grayarch.Decode)
			},
		},
		{
			Name:        "convert",
			Usage:       "Encode or decode every file in a directory",
			Description: "Bitmaps are encoded and BARCH files are decoded. Subdirectories are ignored.",
			ArgsUsage:   "DIRECTORY",
			Action: func(c *cli.Context) error {
				dir := "."
				if c.NArg() > 0 {
					dir = c.Args().First()
				}

				files, err := grayarch.ListFiles(dir)
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				var paths []string
				for _, f := range files {
					paths = append(paths, f.Path)
				}
				if len(paths) == 0 {
					return nil
				}

				return convert(c, paths, 0)
			},
		},
		{
			Name:        "import",
			Usage:       "Convert any image to an 8-bit grayscale bitmap",
			Description: "Reads GIF, JPEG, PNG, BMP, TIFF, WebP or BARCH images.",
			ArgsUsage:   "SOURCE DEST",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "levels",
					Usage: "reduce to this many gray levels (2-256), 0 keeps all",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := importImage(c.Args().Get(0), c.Args().Get(1), c.Int("levels")); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Print the dimensions of bitmap or BARCH files",
			ArgsUsage: "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				for _, file := range c.Args().Slice() {
					if err := info(file); err != nil {
						return cli.NewExitError(err, 1)
					}
				}

				return nil
			},
		},
		{
			Name:  "history",
			Usage: "List recent conversions",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "limit",
					Value: 20,
					Usage: "maximum number of conversions to list",
				},
			},
			Action: func(c *cli.Context) error {
				g, err := newGrayarch(c)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer g.Close()

				if g.History() == nil {
					return cli.NewExitError("history is disabled", 1)
				}

				records, err := g.History().Recent(c.Int("limit"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
				fmt.Fprintln(w, "TIME\tDIRECTION\tPATH\tRESULT")
				for _, r := range records {
					result := r.Message
					if r.Success {
						result = r.Output
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Time.Format(time.RFC3339), r.Direction, r.Path, result)
				}

				return w.Flush()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
