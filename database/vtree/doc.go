// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
// Package vtree implements a versioned Merkle tree persisted in an ordered
// key-value store together with the maintenance tasks operating on its
// metadata.
//
// Every committed version of the tree writes the nodes it modified under
// (version, path) keys. Nodes superseded by a new version are recorded as
// stale keys, which the pruner uses to delete nodes no longer needed by
// any retained version. Defective truncations of earlier releases could
// leave stale-key records behind that do not correspond to any superseded
// node; the stale keys repair task detects and removes those records before
// a pruner acts on them.
package vtree
