// Package logdemo builds a small logger hierarchy on the class package: a
// Logger base class and a ColorLogger that extends it with the Colorizer
// mixin and reaches the overridden methods through super.
package logdemo

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mgomes/pseudoclass/class"
)

const dateLayout = "2006-01-02 15:04:05.00"

// Options configures where loggers write and how they are styled.
type Options struct {
	// Out receives log lines. Nil means os.Stdout.
	Out io.Writer
	// Err receives warn and error lines. Nil means Out.
	Err io.Writer
	// Renderer styles ColorLogger output. Nil means a renderer for Out.
	Renderer *lipgloss.Renderer
	// Now supplies log timestamps. Nil means time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = o.Out
	}
	if o.Renderer == nil {
		o.Renderer = lipgloss.NewRenderer(o.Out)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Loggers holds the logger classes bound to one set of Options.
type Loggers struct {
	Logger      *class.Class
	ColorLogger *class.Class
}

// New defines Logger and ColorLogger.
func New(opts Options) (*Loggers, error) {
	opts = opts.withDefaults()

	logger, err := class.Define(class.Members{
		Name: "Logger",
		Construct: class.NewFunc(func(self *class.Object, args ...class.Value) (class.Value, error) {
			if t := args[0].Hash()["type"]; t.String() != "" {
				return class.NewNil(), self.Set("type", t)
			}
			return class.NewNil(), nil
		}),
		Methods: class.Table{
			"type":    class.NewString("log"),
			"doLog":   class.NewFunc(opts.doLog),
			"log":     logAs(""),
			"warn":    logAs("warn"),
			"error":   logAs("error"),
			"getDate": class.NewFunc(opts.getDate),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("define Logger: %w", err)
	}

	colorLogger, err := logger.Extend(class.Members{
		Name:   "ColorLogger",
		Mixins: []class.Table{Colorizer(opts.Renderer)},
		Methods: class.Table{
			"doLog":   class.NewDelegatingFunc(colorDoLog),
			"getDate": class.NewSuperFunc(colorGetDate),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("define ColorLogger: %w", err)
	}

	return &Loggers{Logger: logger, ColorLogger: colorLogger}, nil
}

// logAs appends the log type to the arguments and hands them to doLog. An
// empty kind uses the instance's type member.
func logAs(kind string) class.Value {
	return class.NewFunc(func(self *class.Object, args ...class.Value) (class.Value, error) {
		t := class.NewString(kind)
		if kind == "" {
			v, err := self.Get("type")
			if err != nil {
				return class.NewNil(), err
			}
			t = v
		}
		return self.Call("doLog", append(args, t)...)
	})
}

// doLog writes its arguments after the date. The last argument is the log
// type.
func (o Options) doLog(self *class.Object, args ...class.Value) (class.Value, error) {
	if len(args) == 0 {
		return class.NewNil(), nil
	}
	kind, args := args[len(args)-1].String(), args[:len(args)-1]

	date, err := self.Call("getDate")
	if err != nil {
		return class.NewNil(), err
	}
	parts := []string{date.String() + ":"}
	for _, arg := range args {
		parts = append(parts, arg.String())
	}

	w := o.Out
	if kind == "warn" || kind == "error" {
		w = o.Err
	}
	_, err = fmt.Fprintln(w, strings.Join(parts, " "))
	return class.NewNil(), err
}

func (o Options) getDate(*class.Object, ...class.Value) (class.Value, error) {
	return class.NewString(o.Now().UTC().Format(dateLayout)), nil
}

func colorDoLog(self *class.Object, args ...class.Value) (class.Value, error) {
	if len(args) > 1 && args[0].Kind() == class.KindString {
		args = append([]class.Value(nil), args...)
		msg := args[0].String()
		switch args[len(args)-1].String() {
		case "warn":
			msg = "<yellow>" + msg + "</yellow>"
		case "error":
			msg = "<red>" + msg + "</red>"
		}
		colored, err := self.Call("colorize", class.NewString(msg))
		if err != nil {
			return class.NewNil(), err
		}
		args[0] = colored
	}
	return self.Super(args...)
}

func colorGetDate(self *class.Object, super class.Super, _ ...class.Value) (class.Value, error) {
	date, err := super()
	if err != nil {
		return class.NewNil(), err
	}
	return self.Call("colorize", class.NewString("<b>"+date.String()+"</b>"))
}
