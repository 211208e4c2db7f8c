package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"lifecoo/internal/bootstrap"
	"lifecoo/internal/domain"
	"lifecoo/internal/render"
)

type options struct {
	text        string
	form        domain.TripRequest
	sample      bool
	loadProfile bool
	saveProfile bool
	recap       bool
	jsonOut     bool
	verbose     bool
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "lifecoo:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("lifecoo", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&opts.text, "text", "", "describe the trip in plain words; it is interpreted before routing")
	fs.StringVar(&opts.form.Origin, "origin", "", "origin city or airport")
	fs.StringVar(&opts.form.Destination, "destination", "", "destination city or airport")
	fs.StringVar(&opts.form.DatesWindow, "dates", "", "dates window")
	fs.StringVar(&opts.form.Travellers, "travellers", "", "who is travelling")
	fs.StringVar(&opts.form.Preferences, "preferences", "", "routing preferences")
	fs.StringVar(&opts.form.OutputStyle, "style", "", "output style")
	fs.StringVar(&opts.form.Notes, "notes", "", "free-form notes")
	fs.BoolVar(&opts.sample, "sample", false, "start from the sample family trip")
	fs.BoolVar(&opts.loadProfile, "profile", false, "start from the saved family profile")
	fs.BoolVar(&opts.saveProfile, "save", false, "save the form as the family profile before routing")
	fs.BoolVar(&opts.recap, "recap", false, "play the spoken recap")
	fs.BoolVar(&opts.jsonOut, "json", false, "print the rendered result as JSON")
	fs.BoolVar(&opts.verbose, "v", false, "print status updates")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 && opts.text == "" {
		opts.text = strings.Join(fs.Args(), " ")
	}
	if opts.sample && opts.loadProfile {
		return options{}, errors.New("-sample and -profile are mutually exclusive")
	}
	return opts, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	sink := newTerminalSink(stderr, opts.verbose)
	services, err := bootstrap.Build(sink)
	if err != nil {
		return err
	}
	defer services.Close()

	coordinator := services.Coordinator
	coordinator.SetRecapEnabled(opts.recap)

	switch {
	case opts.sample:
		if err := coordinator.LoadSample(); err != nil {
			return err
		}
	case opts.loadProfile:
		if _, err := coordinator.LoadProfile(ctx); err != nil {
			return err
		}
	}
	coordinator.UpdateForm(merge(coordinator.Form(), opts.form))

	if opts.saveProfile {
		if err := coordinator.SaveProfile(ctx); err != nil {
			return err
		}
	}

	if opts.text != "" {
		if _, err := coordinator.Interpret(ctx, opts.text, true); err != nil {
			return err
		}
	} else if _, err := coordinator.Optimize(ctx); err != nil {
		return err
	}
	coordinator.Wait()

	view := coordinator.View()
	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	_, err = fmt.Fprintln(stdout, render.Terminal(view))
	return err
}

// merge overlays the non-empty fields of override onto base.
func merge(base, override domain.TripRequest) domain.TripRequest {
	pick := func(current, next string) string {
		if strings.TrimSpace(next) != "" {
			return next
		}
		return current
	}
	return domain.TripRequest{
		Origin:      pick(base.Origin, override.Origin),
		Destination: pick(base.Destination, override.Destination),
		DatesWindow: pick(base.DatesWindow, override.DatesWindow),
		Travellers:  pick(base.Travellers, override.Travellers),
		Preferences: pick(base.Preferences, override.Preferences),
		OutputStyle: pick(base.OutputStyle, override.OutputStyle),
		Notes:       pick(base.Notes, override.Notes),
	}
}
