package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pbaille/moodjournal/internal/chart"
	"github.com/pbaille/moodjournal/internal/domain"
	"github.com/pbaille/moodjournal/internal/journal"
	"github.com/pbaille/moodjournal/internal/session"
)

const (
	barWidth       = 30
	timelinePoints = 40
	excerptWidth   = 60
)

// writeLoop reads one entry per line from in until EOF or :quit
func writeLoop(in io.Reader, out io.Writer, sess *session.Session, bank *journal.SuggestionBank) error {
	fmt.Fprintln(out, "Write your journal entry below. Type :help for commands.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch strings.TrimSpace(line) {
		case ":quit", ":q":
			return nil
		case ":help":
			fmt.Fprintln(out, ":history   list entries, newest first")
			fmt.Fprintln(out, ":stats     emotion distribution")
			fmt.Fprintln(out, ":timeline  emotion over time")
			fmt.Fprintln(out, ":quit      end the session")
			fmt.Fprintln(out, `\:text     journal a line that starts with a colon`)
			continue
		case ":history":
			fmt.Fprint(out, chart.History(sess.Journal.Recent(), excerptWidth))
			continue
		case ":stats":
			fmt.Fprint(out, chart.Frequency(journal.SummarizeFrequency(sess.Journal.History()), barWidth))
			continue
		case ":timeline":
			fmt.Fprint(out, chart.Timeline(journal.SummarizeTimeline(sess.Journal.History()), timelinePoints))
			continue
		}

		// a leading backslash escapes command words
		if rest, ok := strings.CutPrefix(strings.TrimLeft(line, " \t"), `\`); ok {
			line = rest
		}

		entry, err := sess.Journal.Submit(line)
		if errors.Is(err, domain.ErrEmptyInput) {
			fmt.Fprintln(out, "Please write something first 💬")
			continue
		}
		if err != nil {
			return err
		}

		suggestion, err := sess.PickSuggestion(bank, entry.Emotion)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "Predicted emotion: %s\n", strings.ToUpper(string(entry.Emotion)))
		fmt.Fprintln(out, suggestion)
	}

	return scanner.Err()
}
