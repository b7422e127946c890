package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"video-thumbnail/internal/bridge"
	"video-thumbnail/internal/decoder"
	"video-thumbnail/internal/filesystem"
	"video-thumbnail/internal/logging"
	"video-thumbnail/internal/media"
	"video-thumbnail/internal/startup"
	"video-thumbnail/internal/workers"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

const (
	exitFailure     = 1
	exitNoThumbnail = 2
)

// exitError carries the process exit code for a failed command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, func() bool { return term.IsTerminal(int(os.Stdout.Fd())) })
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(exitCode(err))
	}
}

// exitCode maps a command error to the process exit status.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

func newApp(stdout io.Writer, stdoutIsTerminal func() bool) *cli.App {
	requestFlags := []cli.Flag{
		&cli.StringFlag{Name: "video", Aliases: []string{"i"}, Usage: "video path, file:// URI or remote URL", Required: true},
		&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "request header for remote sources, as `KEY=VALUE` (repeatable)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "jpeg", Usage: "output format: jpeg, png or webp"},
		&cli.IntFlag{Name: "maxw", Usage: "maximum width in pixels (0 = unconstrained)"},
		&cli.IntFlag{Name: "maxh", Usage: "maximum height in pixels (0 = unconstrained)"},
		&cli.Int64Flag{Name: "time", Aliases: []string{"t"}, Usage: "frame time in milliseconds"},
		&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Value: 90, Usage: "encoder quality 0-100"},
		&cli.StringFlag{Name: "ffmpeg", EnvVars: []string{"FFMPEG_PATH"}, Value: "ffmpeg", Usage: "ffmpeg binary"},
		&cli.StringFlag{Name: "ffprobe", EnvVars: []string{"FFPROBE_PATH"}, Value: "ffprobe", Usage: "ffprobe binary"},
		&cli.StringFlag{Name: "log-level", EnvVars: []string{"LOG_LEVEL"}, Value: "warn", Usage: "log level (debug, info, warn, error)"},
	}

	return &cli.App{
		Name:    "thumbnail",
		Usage:   "Extract a thumbnail image from a video",
		Version: startup.Version,
		Writer:  stdout,
		// Header values may contain commas.
		DisableSliceFlagSeparator: true,
		// Exit codes are decided in main.
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			{
				Name:  bridge.ModeData,
				Usage: "Write the encoded thumbnail to --out or stdout",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
				}, requestFlags...),
				Action: func(c *cli.Context) error {
					if c.String("out") == "" && stdoutIsTerminal() {
						return errors.New("refusing to write image data to a terminal; use --out or redirect stdout")
					}
					resp, err := call(c, bridge.ModeData)
					if err != nil {
						return err
					}
					if out := c.String("out"); out != "" {
						return writeData(out, resp.Data)
					}
					_, err = c.App.Writer.Write(resp.Data)
					return err
				},
			},
			{
				Name:  bridge.ModeFile,
				Usage: "Write the thumbnail next to the video (or to --path) and print its path",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "destination file or directory"},
					&cli.StringFlag{Name: "cache-dir", EnvVars: []string{"CACHE_DIR"}, Value: filepath.Join(os.TempDir(), "video-thumbnail"), Usage: "directory for thumbnails of remote videos"},
				}, requestFlags...),
				Action: func(c *cli.Context) error {
					resp, err := call(c, bridge.ModeFile)
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, resp.Path)
					return err
				},
			},
		},
	}
}

// buildRequest turns command flags into a wire request.
func buildRequest(c *cli.Context, mode string) (bridge.Request, error) {
	format, err := media.ParseFormat(c.String("format"))
	if err != nil {
		return bridge.Request{}, err
	}
	headers, err := parseHeaders(c.StringSlice("header"))
	if err != nil {
		return bridge.Request{}, err
	}

	req := bridge.Request{
		Video:   c.String("video"),
		Headers: headers,
		Format:  int(format),
		MaxW:    c.Int("maxw"),
		MaxH:    c.Int("maxh"),
		TimeMs:  c.Int64("time"),
		Quality: c.Int("quality"),
		Mode:    mode,
	}
	if mode == bridge.ModeFile && c.IsSet("path") {
		p := c.String("path")
		req.Path = &p
	}
	return req, nil
}

func call(c *cli.Context, mode string) (bridge.Response, error) {
	logging.SetLevel(logging.ParseLevel(c.String("log-level")))

	req, err := buildRequest(c, mode)
	if err != nil {
		return bridge.Response{}, &exitError{code: exitFailure, err: err}
	}

	if req.Format == int(media.FormatWebPLossless) {
		if err := media.InitVips(); err != nil {
			return bridge.Response{}, &exitError{code: exitFailure, err: err}
		}
		defer media.ShutdownVips()
	}

	backend := decoder.New(decoder.Config{
		FFmpegPath:  c.String("ffmpeg"),
		FFprobePath: c.String("ffprobe"),
	})
	generator := media.NewGenerator(backend, c.String("cache-dir"))
	pool := workers.NewPool(1)
	defer pool.Shutdown()

	resp := bridge.NewDispatcher(generator, pool, 0).Call(c.Context, req)
	return resp, responseError(resp)
}

// writeData saves data-mode output the same way file mode writes thumbnails.
func writeData(out string, data []byte) error {
	if err := media.WriteOutput(out, data, filesystem.DefaultRetryConfig()); err != nil {
		return &exitError{code: exitFailure, err: err}
	}
	return nil
}

// responseError converts a failed response into an exitError.
func responseError(resp bridge.Response) error {
	switch {
	case resp.NotImplemented:
		return &exitError{code: exitFailure, err: fmt.Errorf("mode %q is not implemented", resp.Mode)}
	case resp.Err == nil:
		return nil
	case resp.Err.Code == bridge.CodeNoThumbnail:
		return &exitError{code: exitNoThumbnail, err: resp.Err}
	default:
		return &exitError{code: exitFailure, err: resp.Err}
	}
}

// parseHeaders parses KEY=VALUE pairs. A later duplicate key wins.
func parseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid header %q, expected KEY=VALUE", pair)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}
