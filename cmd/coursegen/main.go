// Command coursegen generates one course document against the AI gateway
// and prints it as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/neurobridge-coursegen/internal/app"
	"github.com/yungbote/neurobridge-coursegen/internal/course"
	"github.com/yungbote/neurobridge-coursegen/internal/pkg/pointers"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/config"
	"github.com/yungbote/neurobridge-coursegen/internal/platform/logger"
)

type objectiveList []string

func (o *objectiveList) String() string { return strings.Join(*o, "; ") }

func (o *objectiveList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*o = append(*o, v)
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "coursegen: %v\n", err)
		os.Exit(1)
	}
}

// runOptions leaves thumbnails to configuration unless the flag turns them
// off for this run.
func runOptions(noThumbs bool) course.RunOptions {
	var ro course.RunOptions
	if noThumbs {
		ro.Thumbnails = pointers.Ptr(false)
	}
	return ro
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("coursegen", flag.ContinueOnError)
	var (
		req        course.Request
		objectives objectiveList
		out        string
		noThumbs   bool
	)
	fs.StringVar(&req.Title, "title", "", "Course title (required)")
	fs.StringVar(&req.Description, "description", "", "Course description")
	fs.StringVar(&req.Difficulty, "difficulty", "beginner", "beginner, intermediate or advanced")
	fs.StringVar(&req.Duration, "duration", "", "Expected course duration, e.g. \"4 weeks\"")
	fs.StringVar(&req.TargetAudience, "audience", "", "Target audience")
	fs.Var(&objectives, "objective", "Learning objective; repeat for several")
	fs.StringVar(&out, "out", "", "Write the document here instead of stdout")
	fs.BoolVar(&noThumbs, "no-thumbnails", false, "Skip module and lesson thumbnails")

	cfg, err := config.ParseConfig(fs, args)
	if err != nil {
		return err
	}
	req.Objectives = objectives
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("-title is required")
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	services, err := app.NewServices(log, cfg, nil, nil)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := services.Courses.Generate(ctx, req, runOptions(noThumbs))
	if err != nil {
		return fmt.Errorf("generate course: %w", err)
	}
	if doc.Fallback {
		log.Warn("Course generation fell back to the static course", "title", doc.Title)
	}

	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode course: %w", err)
	}
	raw = append(raw, '\n')
	if out == "" {
		_, err = stdout.Write(raw)
		return err
	}
	if err := os.WriteFile(out, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}
