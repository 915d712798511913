package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iris-assistant/iris/internal/dependency"
	"github.com/iris-assistant/iris/internal/schema"
)

var chatMessage string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	// Activity updates go to stderr so piped output stays clean.
	container.Broadcaster().Subscribe(func(st schema.Status) {
		if st == schema.StatusIdle {
			return
		}
		fmt.Fprintf(os.Stderr, "  ↳ %s\n", st)
	})

	if chatMessage != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		printResponse(container.Orchestrator().SendMessage(ctx, chatMessage))
		return nil
	}

	return runInteractive(container)
}

// runInteractive starts the REPL: reads lines from stdin and prints each
// reply before prompting again.
func runInteractive(container *dependency.Container) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n", logo)
	fmt.Println("   Commands: /tts on|off, /reload, /reset")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	listenForSignals(cancel)

	ttsEnabled := container.Config().Agent.DefaultTTSEnabled
	speaker := container.Speaker()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		switch {
		case line == "/tts on":
			if !speaker.Available() {
				fmt.Println("No speech synthesizer found on this machine.")
				continue
			}
			ttsEnabled = true
			fmt.Println("TTS enabled.")
			continue
		case line == "/tts off":
			ttsEnabled = false
			fmt.Println("TTS disabled.")
			continue
		case line == "/reload":
			container.ReloadPlugins()
			fmt.Printf("Plugins reloaded: %d tools available.\n", container.Registry().Len())
			continue
		case line == "/reset":
			container.Orchestrator().ResetSession()
			fmt.Println("Session reset.")
			continue
		}

		reply := container.Orchestrator().SendMessage(ctx, line)
		printResponse(reply)

		if ttsEnabled {
			if err := speaker.Speak(ctx, reply); err != nil {
				fmt.Fprintf(os.Stderr, "tts error: %v\n", err)
			}
		}
	}
}

// listenForSignals cancels ctx on SIGINT or SIGTERM and exits.
func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()
}

func printResponse(text string) {
	fmt.Printf("\n%s iris\n%s\n\n", logo, text)
}
