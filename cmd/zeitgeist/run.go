package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/zeitgeist/internal/config"
	"github.com/abelbrown/zeitgeist/internal/engine"
	"github.com/abelbrown/zeitgeist/internal/logging"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sourceStyle  = lipgloss.NewStyle().Faint(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// commonFlags registers the flags shared by every subcommand.
func commonFlags(fs *flag.FlagSet) (configPath *string, strict *bool) {
	configPath = fs.String("config", "", "config file path")
	strict = fs.Bool("strict", false, "surface rate-limit and provider failures as errors")
	return configPath, strict
}

// setup loads config, initializes logging, and builds the engine.
func setup(configPath string, strict bool) *engine.Engine {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := logging.Init(cfg.LogLevel); err != nil {
		// Fall back to stderr rather than refusing to run.
		logging.InitConsole(cfg.LogLevel)
	}

	e, err := engine.New(cfg, engine.Options{Strict: strict})
	if err != nil {
		log.Fatalf("start engine: %v", err)
	}
	return e
}

// topicArg returns the topic from the remaining args or exits with usage.
func topicArg(fs *flag.FlagSet, cmd string) string {
	topic := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if topic == "" {
		fmt.Fprintf(os.Stderr, "usage: zeitgeist %s [flags] <topic>\n", cmd)
		os.Exit(1)
	}
	return topic
}

func teardown(e *engine.Engine) {
	if err := e.Close(); err != nil {
		logging.Warn("engine close failed", "err", err)
	}
	logging.Close()
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath, strict := commonFlags(fs)
	contextText := fs.String("context", "", "extra free-text context appended to queries")
	fs.Parse(os.Args[1:])

	topic := topicArg(fs, "search")
	e := setup(*configPath, *strict)
	defer teardown(e)

	got, err := e.GetZeitgeist(context.Background(), topic, *contextText)
	if err != nil {
		log.Fatalf("search: %v", err)
	}

	fmt.Println(headingStyle.Render("Zeitgeist: " + got.Topic))
	fmt.Println(got.Summary)
	fmt.Println()

	if len(got.SearchResults) == 0 {
		fmt.Println(warnStyle.Render("no results found"))
		return
	}
	for _, r := range got.SearchResults {
		fmt.Printf("%s %s %s\n",
			scoreStyle.Render(fmt.Sprintf("%.2f", r.RawScore)),
			r.Text,
			sourceStyle.Render("("+r.Source+")"))
	}
}

func runOpinions() {
	fs := flag.NewFlagSet("opinions", flag.ExitOnError)
	configPath, strict := commonFlags(fs)
	fs.Parse(os.Args[1:])

	topic := topicArg(fs, "opinions")
	e := setup(*configPath, *strict)
	defer teardown(e)

	got, err := e.GetRoleOpinions(context.Background(), topic)
	if err != nil {
		log.Fatalf("opinions: %v", err)
	}

	fmt.Println(headingStyle.Render(fmt.Sprintf("Opinions on %s (role: %s)", got.Topic, got.Role)))
	if len(got.Opinions) == 0 {
		fmt.Println(warnStyle.Render("no opinions found"))
		return
	}
	for _, o := range got.Opinions {
		fmt.Printf("[%s %s] %s %s\n",
			o.Sentiment,
			scoreStyle.Render(fmt.Sprintf("%.2f", o.Confidence)),
			o.Text,
			sourceStyle.Render("("+o.Source+")"))
	}
}

func runTools() {
	fs := flag.NewFlagSet("tools", flag.ExitOnError)
	configPath, strict := commonFlags(fs)
	fs.Parse(os.Args[1:])

	topic := topicArg(fs, "tools")
	e := setup(*configPath, *strict)
	defer teardown(e)

	got, err := e.GetTrendingTools(context.Background(), topic)
	if err != nil {
		log.Fatalf("tools: %v", err)
	}

	fmt.Println(headingStyle.Render("Trending tools: " + got.Topic))
	if len(got.Tools) == 0 {
		fmt.Println(warnStyle.Render("no tools found"))
		return
	}
	for _, tool := range got.Tools {
		fmt.Printf("%s %s: %s %s\n",
			scoreStyle.Render(fmt.Sprintf("%.2f", tool.PopularityScore)),
			headingStyle.Render(tool.Name),
			tool.Description,
			sourceStyle.Render("("+tool.Source+")"))
	}
}

func runExperts() {
	fs := flag.NewFlagSet("experts", flag.ExitOnError)
	configPath, strict := commonFlags(fs)
	fs.Parse(os.Args[1:])

	topic := topicArg(fs, "experts")
	e := setup(*configPath, *strict)
	defer teardown(e)

	got, err := e.GetExpertPerspectives(context.Background(), topic)
	if err != nil {
		log.Fatalf("experts: %v", err)
	}

	fmt.Println(headingStyle.Render("Expert perspectives: " + got.Topic))
	if len(got.Perspectives) == 0 {
		fmt.Println(warnStyle.Render("no perspectives found"))
		return
	}
	for _, p := range got.Perspectives {
		fmt.Printf("[%s %s] %s %s\n",
			p.ExpertType,
			scoreStyle.Render(fmt.Sprintf("%.2f", p.Confidence)),
			p.Summary,
			sourceStyle.Render("("+p.Source+")"))
	}
}
