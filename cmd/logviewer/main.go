// Command logviewer follows the JSON log files of the events client and
// prints them in a compact colored form. Typing narrows the output to
// entries containing the typed text.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"

	"eventplanner/local-app/internal/config"
	"eventplanner/local-app/internal/logview"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
)

func printHelp() {
	fmt.Println("Usage: logviewer [log directory] [-r <refresh rate in milliseconds>] [-h|--help]")
	fmt.Println("\nOptions:")
	fmt.Println("  [log directory]      Directory containing the *.log files (default: log_folder from the config)")
	fmt.Println("  -r, --rate           Poll interval in milliseconds (default: 200)")
	fmt.Println("  -h, --help           Show this help message")
	fmt.Println("\nType to add to the filter, backspace to remove the last character.")
	fmt.Println("Press Ctrl-C to exit.")
}

func main() {
	var help bool
	var rate int
	var configPath string

	flag.IntVar(&rate, "r", 200, "Poll interval in milliseconds")
	flag.IntVar(&rate, "rate", 200, "Poll interval in milliseconds")
	flag.StringVar(&configPath, "config", config.DefaultPath, "Configuration file used to find the log folder")
	flag.BoolVar(&help, "h", false, "Show help")
	flag.BoolVar(&help, "help", false, "Show help")
	flag.Parse()

	if help {
		printHelp()
		return
	}

	logDir := config.DefaultConfig().LogFolder
	if args := flag.Args(); len(args) > 0 {
		logDir = args[0]
	} else if _, err := os.Stat(configPath); err == nil {
		if cfg, err := config.ConfigLoad(configPath); err == nil {
			logDir = cfg.LogFolder
		}
	}
	if info, err := os.Stat(logDir); err != nil || !info.IsDir() {
		fmt.Printf("Log directory '%s' does not exist. Please specify a valid directory.\n", logDir)
		os.Exit(1)
	}
	if rate <= 0 {
		rate = 200
	}

	if err := keyboard.Open(); err != nil {
		fmt.Printf("Failed to open keyboard: %v\n", err)
		os.Exit(1)
	}
	defer keyboard.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Monitoring logs in directory: %s\n", logDir)
	fmt.Println("Start typing to filter logs. Press Ctrl-C to exit.")

	filter := &logview.Filter{}
	go readKeys(filter, stop)
	follow(ctx, logview.NewTailer(logDir), filter, time.Duration(rate)*time.Millisecond)
	fmt.Println("\nExiting...")
}

// follow polls the log directory until ctx is done.
func follow(ctx context.Context, tailer *logview.Tailer, filter *logview.Filter, interval time.Duration) {
	formatter := logview.Formatter{Color: true}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := tailer.Poll(
			func(file string, e logview.Entry) {
				rendered := formatter.Format(e)
				if filter.Match(rendered) {
					fmt.Println(rendered)
				}
			},
			func(n logview.Notice) {
				color := colorGreen
				if n.Err != nil {
					color = colorRed
				} else if n.Message != "New log file detected" {
					color = colorYellow
				}
				msg := fmt.Sprintf("%s: %s", n.Message, n.File)
				if n.Err != nil {
					msg += fmt.Sprintf(" (%v)", n.Err)
				}
				fmt.Printf("%s%s%s\n", color, msg, colorReset)
			},
		)
		if err != nil {
			fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// readKeys edits the filter from raw key presses. Ctrl-C stops the viewer.
func readKeys(filter *logview.Filter, stop context.CancelFunc) {
	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			stop()
			return
		}

		var current string
		switch key {
		case keyboard.KeyCtrlC:
			stop()
			return
		case keyboard.KeyBackspace, keyboard.KeyBackspace2:
			current = filter.Backspace()
		case keyboard.KeySpace:
			current = filter.Append(' ')
		default:
			if char == 0 {
				continue
			}
			current = filter.Append(char)
		}
		fmt.Printf("\r%sCurrent filter:%s %s\n", colorMagenta, colorReset, current)
	}
}
