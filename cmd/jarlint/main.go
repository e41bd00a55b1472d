/*
 * jarlint - a static link checker for JVM bytecode classpaths
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Command jarlint is a static link checker for JVM bytecode classpaths:
// it reports, per user class, which types and methods it references that
// neither the rest of the classpath nor the target platform provides.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/B4ckslash/jar-verifier/archive"
	"github.com/B4ckslash/jar-verifier/checker"
	"github.com/B4ckslash/jar-verifier/classfile"
	"github.com/B4ckslash/jar-verifier/classinfo"
	"github.com/B4ckslash/jar-verifier/config"
	"github.com/B4ckslash/jar-verifier/internal/embeddeddigests"
	"github.com/B4ckslash/jar-verifier/jlerr"
	"github.com/B4ckslash/jar-verifier/report"
	"github.com/B4ckslash/jar-verifier/shutdown"
	"github.com/B4ckslash/jar-verifier/trace"
	"github.com/B4ckslash/jar-verifier/workpool"
)

func main() {
	trace.Init()
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		shutdown.Exit(shutdown.CodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Config{}

	cmd := &cobra.Command{
		Use:           "jarlint <classpath>",
		Short:         "Static link checker for JVM bytecode classpaths",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Classpath = args[0]
			return run(cfg)
		},
	}

	cmd.Flags().IntVarP(&cfg.Threads, "threads", "t", 1, "worker count")
	cmd.Flags().StringVarP(&cfg.OutputFile, "output-file", "o", "", "report output path (default: stdout)")
	cmd.Flags().StringVar(&cfg.JdkClassinfo, "jdk-classinfo", "", "platform digest file")
	if config.EmbeddedDigestsSupported {
		cmd.Flags().StringVarP(&cfg.JavaVersion, "java-version", "j", "", "embedded digest version (11, 17, 21, 25)")
	}

	return cmd
}

func run(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	digestBytes, err := loadDigestBytes(cfg)
	if err != nil {
		return err
	}
	digest, err := classinfo.Parse(bytes.NewReader(digestBytes))
	if err != nil {
		return jlerr.Wrap(jlerr.ParseError, "parsing platform digest", err)
	}

	archivePaths, err := archive.ResolveClasspath(cfg.Classpath)
	if err != nil {
		return err
	}

	pool := workpool.New(cfg.Threads)

	classesByName, err := archive.Load(pool, archivePaths, false)
	if err != nil {
		return err
	}

	classSlice := make([]*classfile.Class, 0, len(classesByName))
	for _, c := range classesByName {
		classSlice = append(classSlice, c)
	}

	reqs, err := workpool.RunCollect(pool, len(classSlice), func(i int) (checker.Requirements, error) {
		return checker.ComputeRequirements(classSlice[i])
	})
	if err != nil {
		return err
	}

	userProvided, err := checker.Provided(classSlice, digest)
	if err != nil {
		return err
	}

	deps := checker.Resolve(reqs, userProvided, digest)

	if err := report.WriteTo(cfg.OutputFile, deps); err != nil {
		return jlerr.Wrap(jlerr.IoError, "writing report", err)
	}

	return nil
}

func loadDigestBytes(cfg config.Config) ([]byte, error) {
	if cfg.JdkClassinfo != "" {
		data, err := os.ReadFile(cfg.JdkClassinfo)
		if err != nil {
			return nil, jlerr.Wrap(jlerr.IoError, "reading platform digest "+cfg.JdkClassinfo, err)
		}
		return data, nil
	}
	data, ok := embeddeddigests.Get(cfg.JavaVersion)
	if !ok {
		return nil, jlerr.New(jlerr.ArgError, fmt.Sprintf("no embedded digest for java version %q", cfg.JavaVersion))
	}
	return data, nil
}
