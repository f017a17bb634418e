// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package main

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/vtree/database/vtree"
)

var Info = cli.Command{
	Action:    info,
	Name:      "info",
	Usage:     "lists information about a tree database",
	ArgsUsage: "<directory>",
}

func info(context *cli.Context) error {
	return withDatabase(context, func(db *vtree.NodeDatabase) error {
		return printInfo(context.App.Writer, db)
	})
}

func printInfo(out io.Writer, db *vtree.NodeDatabase) error {
	manifest, found, err := db.Manifest()
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintf(out, "Directory contains no tree\n")
		return nil
	}
	fmt.Fprintf(out, "Directory contains a tree with the following properties:\n")
	fmt.Fprintf(out, "\tVersions:             %d\n", manifest.VersionCount)

	pruned, found, err := db.PrunerData()
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "\tPruned up to:         %d\n", pruned.LastPrunedVersion)
	} else {
		fmt.Fprintf(out, "\tPruned up to:         -\n")
	}

	minStale, found, err := db.MinStaleKeyVersion()
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "\tOldest stale keys:    %d\n", minStale)
	} else {
		fmt.Fprintf(out, "\tOldest stale keys:    -\n")
	}

	repair, found, err := db.StaleKeysRepairData()
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintf(out, "\tStale keys repaired:  up to %d\n", repair.NextVersion)
	} else {
		fmt.Fprintf(out, "\tStale keys repaired:  -\n")
	}
	return nil
}
