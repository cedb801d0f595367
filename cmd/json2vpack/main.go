// Command json2vpack converts JSON text to VPack bytes.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/thongbkvn/velocypack"
)

var (
	multi   bool
	noSort  bool
	hexDump bool
	jsonOut bool
	outFile string
	verbose bool
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "json2vpack [file]",
	Short: "Convert JSON to VPack",
	Long: `json2vpack reads JSON from a file or standard input, converts it to
VPack and writes the result to standard output or a file.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().BoolVarP(&multi, "multi", "m", false, "accept multiple whitespace-separated top-level values")
	rootCmd.Flags().BoolVar(&noSort, "no-sort", false, "keep object keys in input order")
	rootCmd.Flags().BoolVarP(&hexDump, "hex", "x", false, "write a hex dump instead of raw bytes")
	rootCmd.Flags().BoolVarP(&jsonOut, "json", "j", false, "round-trip: dump the VPack back to JSON")
	rootCmd.Flags().StringVarP(&outFile, "output", "o", "", "write output to this file instead of stdout")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log conversion details")
}

func run(cmd *cobra.Command, args []string) error {
	log.SetLevel(logrus.InfoLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	input, name, err := readInput(args)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"source": name, "bytes": len(input)}).Debug("read input")

	p := velocypack.NewParser()
	p.SortAttributeNames(!noSort)

	var n int
	if multi {
		n, err = p.ParseMulti(input)
	} else {
		n, err = p.Parse(input)
	}
	if err != nil {
		var pe *velocypack.ParseError
		if errors.As(err, &pe) {
			return fmt.Errorf("%s: %v", name, pe)
		}
		return err
	}
	vpack := p.Builder().Bytes()
	log.WithFields(logrus.Fields{"values": n, "bytes": len(vpack)}).Debug("converted")

	out, err := render(vpack, n)
	if err != nil {
		return err
	}
	return writeOutput(out)
}

func readInput(args []string) ([]byte, string, error) {
	if len(args) == 1 && args[0] != "-" {
		data, err := os.ReadFile(args[0])
		return data, args[0], err
	}
	data, err := io.ReadAll(os.Stdin)
	return data, "stdin", err
}

func render(vpack []byte, n int) ([]byte, error) {
	switch {
	case jsonOut:
		out := make([]byte, 0, len(vpack)*2)
		rest := velocypack.Slice(vpack)
		for i := 0; i < n; i++ {
			var err error
			out, err = velocypack.DumpJSON(rest, out)
			if err != nil {
				return nil, err
			}
			out = append(out, '\n')
			rest = rest[rest.ByteSize():]
		}
		return out, nil
	case hexDump:
		return []byte(hex.Dump(vpack)), nil
	default:
		return vpack, nil
	}
}

func writeOutput(out []byte) error {
	if outFile == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(outFile, out, 0o644)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
