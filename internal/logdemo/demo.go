package logdemo

import (
	"context"
	"fmt"
	"time"

	"github.com/mgomes/pseudoclass/class"
)

const (
	title = "<b>Class Example:</b> Logger"
	intro = "<i>In this example, we'll use inheritance, mixins, super delegation, default properties,\n" +
		"private helper functions, and methods on the prototype of a Class without an instance.</i>"
)

// Run prints the logger walkthrough: a colorized header from the class
// prototype, then a message logger counting to five with interval between
// lines, then a goodbye from an error logger.
func Run(ctx context.Context, opts Options, interval time.Duration) error {
	opts = opts.withDefaults()
	loggers, err := New(opts)
	if err != nil {
		return err
	}

	proto := loggers.ColorLogger.Prototype()
	for _, line := range []string{title, intro, ""} {
		v, err := proto.Call("colorize", class.NewString(line))
		if err != nil {
			return err
		}
		fmt.Fprintln(opts.Out, v.String())
	}

	message, err := loggers.ColorLogger.New(class.NewHash(map[string]class.Value{"type": class.NewString("log")}))
	if err != nil {
		return err
	}
	errLog, err := loggers.ColorLogger.New(class.NewHash(map[string]class.Value{"type": class.NewString("error")}))
	if err != nil {
		return err
	}

	if _, err := message.Call("warn", class.NewString("Starting...")); err != nil {
		return err
	}
	for n := 1; n <= 5; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
		if _, err := message.Call("log", class.NewString(fmt.Sprintf("Counting %d", n))); err != nil {
			return err
		}
	}
	if _, err := errLog.Call("log", class.NewString("Goodbye!")); err != nil {
		return err
	}

	if err := message.Destruct(); err != nil {
		return err
	}
	return errLog.Destruct()
}
