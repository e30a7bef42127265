package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/client"
	"github.com/yokitheyo/styletransfer/internal/form"
)

func main() {
	contentFlag := pflag.StringP("content", "c", "", "content image")
	styleFlag := pflag.StringP("style", "s", "", "style image")
	endpointFlag := pflag.StringP("endpoint", "e", client.DefaultEndpoint, "style transfer endpoint")
	outFlag := pflag.StringP("out", "o", "", "save the stylized image to this file")
	noSpinnerFlag := pflag.Bool("no-spinner", false, "do not show progress")
	logLevelFlag := pflag.String("log-level", "error", "log level")

	pflag.Parse()

	zlog.Init()

	if level, err := zerolog.ParseLevel(*logLevelFlag); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *contentFlag, *styleFlag, *endpointFlag, *outFlag, !*noSpinnerFlag); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, contentPath, stylePath, endpoint, outPath string, showSpinner bool) error {
	view := &terminalView{out: os.Stdout}

	content, closeContent, err := openUpload(contentPath)
	if err != nil {
		return err
	}
	defer closeContent()

	style, closeStyle, err := openUpload(stylePath)
	if err != nil {
		return err
	}
	defer closeStyle()

	c := client.New(endpoint)

	var options []form.Option
	if showSpinner {
		options = append(options, form.WithAffordances(&spinner{out: os.Stderr}))
	}

	h := form.NewHandler(c, view, options...)

	if err := h.Submit(ctx, content, style); err != nil {
		return err
	}

	if outPath == "" {
		return nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		view.Alert(fmt.Sprintf("cannot create %s: %v", outPath, err))
		return err
	}
	defer f.Close()

	if _, err := c.Download(ctx, view.imageURL, f); err != nil {
		zlog.Logger.Error().Err(err).Str("image_url", view.imageURL).Msg("download failed")
		view.Alert(form.FailureAlert)
		return err
	}

	fmt.Fprintln(view.out, messageStyle.Render("saved "+outPath))
	return nil
}

// openUpload opens path as a form upload. An empty path is an empty input
// and yields a nil upload.
func openUpload(path string) (*form.Upload, func(), error) {
	if path == "" {
		return nil, func() {}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("path", path).Msg("cannot open image")
		return nil, nil, err
	}

	upload := &form.Upload{
		Filename: filepath.Base(path),
		Body:     f,
	}

	return upload, func() { f.Close() }, nil
}
