// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	enginelib "github.com/engineprime-go/enginelib"
)

var (
	wantTracks      bool
	wantMetaData    bool
	wantPerformance bool
	wantAll         bool
	trackID         int64
)

func prettyPrint(v interface{}) string {
	buf, err := json.Marshal(v)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return fmt.Sprintf("%+v", v)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func dumpLibrary(dir string, cmd *cobra.Command) {
	lib, err := enginelib.Open(dir, nil)
	if err != nil {
		log.Printf("error while opening library %s: %s", dir, err)
		return
	}
	defer lib.Close()

	log.Printf("opened %s: version %s, uuid %s", dir, lib.Version(), lib.UUID())

	if wantAll || wantTracks {
		t, err := lib.GetTrack(trackID)
		if err != nil {
			log.Printf("error reading track %d: %s", trackID, err)
		} else {
			fmt.Println(prettyPrint(t))
		}
	}

	if wantAll || wantMetaData {
		md, err := lib.GetAllMetaData(trackID)
		if err != nil {
			log.Printf("error reading metadata for track %d: %s", trackID, err)
		} else {
			fmt.Println(prettyPrint(md))
		}
	}

	if wantAll || wantPerformance {
		pd, err := lib.GetPerformanceData(trackID)
		if err != nil {
			log.Printf("error reading performance data for track %d: %s", trackID, err)
		} else {
			fmt.Println(prettyPrint(pd))
		}
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "enginedump",
		Short: "An Engine Library storage inspector",
		Long:  "Inspects the paired music/performance stores of an Engine Library directory",
		Run: func(cmd *cobra.Command, args []string) {
		},
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Long:  "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print("You are using version 0.0.1")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [directory]",
		Short: "Dumps the library",
		Long:  "Dumps track, metadata and performance-data records from an Engine Library directory",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			dumpLibrary(args[0], cmd)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVarP(&wantTracks, "track", "", false, "Dump the track record")
	dumpCmd.Flags().BoolVarP(&wantMetaData, "metadata", "", false, "Dump the metadata record")
	dumpCmd.Flags().BoolVarP(&wantPerformance, "performance", "", false, "Dump the performance-data record")
	dumpCmd.Flags().BoolVarP(&wantAll, "all", "", false, "Dump everything")
	dumpCmd.Flags().Int64VarP(&trackID, "id", "", 1, "Track id to dump")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
