// Copyright (c) Roman Atachiants and contributors. All rights reserved.
// Licensed under the MIT license. See LICENSE file in the project root for details.

// Command ni-extract identifies and decodes a single NI sample-library
// file, printing a short summary of what it found. Given a standalone NCW
// file, -wav writes the decoded PCM stream alongside the input as a .wav
// file; a monolith's entries are only counted, not decoded.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	nifile "github.com/kelindar/ni-file"
	"github.com/kelindar/ni-file/internal/kontakt"
)

func main() {
	wav := flag.Bool("wav", false, "write decoded NCW audio next to the input as a .wav file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-wav] <file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(flag.Arg(0), *wav); err != nil {
		fmt.Fprintf(os.Stderr, "ni-extract: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, writeWAV bool) error {
	result, err := nifile.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	fmt.Printf("%s: %s\n", path, result.Kind)

	switch result.Kind {
	case nifile.NISoundContainer:
		describeContainer(result)
	case nifile.KontaktMonolith:
		fmt.Printf("  %d directory entries\n", len(result.Directory.Entries))
	case nifile.NCWAudio:
		samples, err := result.Audio.Samples()
		if err != nil {
			return fmt.Errorf("decode audio: %w", err)
		}
		fmt.Printf("  %d channels, %d-bit, %d Hz, %d samples\n",
			result.Audio.Header.Channels, result.Audio.Header.BitsPerSample,
			result.Audio.Header.SampleRate, len(samples))

		if writeWAV {
			out := strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
			if err := os.WriteFile(out, result.Audio.WriteWAV(samples), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("  wrote %s\n", out)
		}
	}

	return nil
}

func describeContainer(result *nifile.Result) {
	header, so, found, err := result.BNISoundPreset()
	if err != nil {
		fmt.Printf("  preset: %v\n", err)
		return
	}
	if !found {
		fmt.Println("  no BNISoundPreset in tree")
		return
	}

	switch {
	case header.V1 != nil:
		fmt.Println("  preset header: V1")
	case header.V2 != nil:
		fmt.Printf("  preset header: V2, %s, %d zones\n", header.V2.AppSignature, header.V2.NumberOfZones)
	case header.V42 != nil:
		fmt.Printf("  preset header: V4.2, %s, %d zones\n", header.V42.AppSignature, header.V42.NumberOfZones)
	}
	describeObject(so, "  ")
}

// describeObject walks a structured object's children, printing the
// named chunk tree (program, groups, zones, ...) rather than a bare
// count, recursing into every composite chunk's nested object.
func describeObject(so *kontakt.StructuredObject, indent string) {
	for _, c := range so.Children {
		fmt.Printf("%s%s\n", indent, c.ID)
		if c.Object != nil {
			describeObject(c.Object, indent+"  ")
		}
	}
}
