// pdfxref inspects a PDF's cross-reference data: the consolidated xref
// map and trailer, one resolved object, or what brute-force recovery
// would change.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/corvidae-labs/pdfxref"
	"github.com/corvidae-labs/pdfxref/bruteforce"
	"github.com/corvidae-labs/pdfxref/config"
	"github.com/corvidae-labs/pdfxref/internal/pdfio"
	"github.com/corvidae-labs/pdfxref/model"
)

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal error:", err)
		os.Exit(1)
	}
}

func main() {
	pflag.Bool("lenient", true, "enable brute-force recovery fallbacks")
	pflag.Uint32("eof-lookup-range", 2048, "bytes scanned from EOF for startxref")
	pflag.String("config", "", "optional config file (toml/yaml/json)")
	pflag.Parse()

	check(viper.BindPFlags(pflag.CommandLine))
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		check(viper.ReadInConfig())
	}

	args := pflag.Args()
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: pdfxref <xref|dump|recover> <file> [args...]")
		os.Exit(2)
	}

	conf := config.Default()
	conf.Lenient = viper.GetBool("lenient")
	conf.EOFLookupRange = viper.GetUint32("eof-lookup-range")

	switch args[0] {
	case "xref":
		runXref(args[1], conf)
	case "dump":
		if len(args) < 4 {
			fmt.Fprintln(os.Stderr, "usage: pdfxref dump <file> <obj> <gen>")
			os.Exit(2)
		}
		runDump(args[1], args[2], args[3], conf)
	case "recover":
		conf.Lenient = true
		runRecover(args[1], conf)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		os.Exit(2)
	}
}

func runXref(path string, conf config.Configuration) {
	doc, err := pdfxref.OpenFile(path, conf)
	check(err)

	table := doc.XrefTable()
	fmt.Printf("%d entries\n", table.Len())
	for _, key := range table.Keys() {
		e, _ := table.Get(key)
		switch e.Kind {
		case 0:
			fmt.Printf("%s free -> %s\n", key, e.NextFree)
		case 1:
			fmt.Printf("%s in-use @%d\n", key, e.Offset)
		case 2:
			fmt.Printf("%s compressed in %s[%d]\n", key, e.StreamKey, e.IndexWithinStream)
		}
	}

	tr := doc.Trailer()
	fmt.Printf("trailer: size=%d root=%v info=%v id=%v\n", tr.Size, tr.Root, tr.Info, tr.ID)
}

func runDump(path, objStr, genStr string, conf config.Configuration) {
	num, err := strconv.ParseUint(objStr, 10, 64)
	check(err)
	gen, err := strconv.ParseUint(genStr, 10, 32)
	check(err)

	doc, err := pdfxref.OpenFile(path, conf)
	check(err)

	v, err := doc.Resolve(model.ObjectKey{Number: num, Generation: uint32(gen)})
	check(err)
	fmt.Printf("%+v\n", v)
}

func runRecover(path string, conf config.Configuration) {
	f, err := os.Open(path)
	check(err)
	defer f.Close()

	src, err := pdfio.New(f)
	check(err)

	scanner := bruteforce.NewScanner(src)
	recovered, tr, err := scanner.FullTrailer()
	check(err)

	doc, err := pdfxref.OpenFile(path, conf)
	check(err)
	authoritative := doc.XrefTable()

	fmt.Printf("recovered %d entries, authoritative had %d\n", recovered.Len(), authoritative.Len())
	for _, key := range recovered.Keys() {
		if _, ok := authoritative.Get(key); !ok {
			e, _ := recovered.Get(key)
			fmt.Printf("  + %s (missing from authoritative xref), kind=%d offset=%d\n", key, e.Kind, e.Offset)
		}
	}
	fmt.Printf("recovered trailer: root=%v info=%v size=%d\n", tr.Root, tr.Info, tr.Size)
}
