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
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/vtree/database/vtree"
)

var Verify = cli.Command{
	Action:    verify,
	Name:      "verify",
	Usage:     "verifies the consistency of a tree version",
	ArgsUsage: "<directory>",
	Flags: []cli.Flag{
		&versionFlag,
	},
}

var versionFlag = cli.Uint64Flag{
	Name:  "version",
	Usage: "version to verify, defaults to the latest version",
}

func verify(context *cli.Context) error {
	return withDatabase(context, func(db *vtree.NodeDatabase) error {
		tree := vtree.NewMerkleTree(db)
		version, found, err := tree.LatestVersion()
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("directory contains no tree")
		}
		if context.IsSet(versionFlag.Name) {
			version = context.Uint64(versionFlag.Name)
		}
		return tree.VerifyConsistency(version, &verificationObserver{out: context.App.Writer})
	})
}

type verificationObserver struct {
	out   io.Writer
	start time.Time
}

func (o *verificationObserver) StartVerification() {
	o.start = time.Now()
	o.printHeader()
	fmt.Fprintln(o.out, "Starting verification ...")
}

func (o *verificationObserver) Progress(msg string) {
	o.printHeader()
	fmt.Fprintln(o.out, msg)
}

func (o *verificationObserver) EndVerification(res error) {
	if res == nil {
		o.printHeader()
		fmt.Fprintln(o.out, "Verification successful!")
	}
}

func (o *verificationObserver) printHeader() {
	now := time.Now()
	t := uint64(now.Sub(o.start).Seconds())
	fmt.Fprintf(o.out, "%s [t=%4d:%02d] - ", now.Format("15:04:05"), t/60, t%60)
}
