// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.
package vtree

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/exp/maps"
	"golang.org/x/sync/errgroup"
)

// sampleSize limits the number of keys included in log messages.
const sampleSize = 5

// BogusStaleKeys lists stale keys of a single version that do not correspond
// to a node superseded in that version.
type BogusStaleKeys struct {
	// Unreachable are stale keys with a path touched by the version that is
	// not part of its tree. They are left behind by truncated versions.
	Unreachable []NodeKey
	// Unexplained are stale keys with a path not touched by the version at all.
	Unexplained []NodeKey
}

// All returns all bogus stale keys.
func (b BogusStaleKeys) All() []NodeKey {
	res := make([]NodeKey, 0, b.Len())
	res = append(res, b.Unreachable...)
	return append(res, b.Unexplained...)
}

// Len returns the number of bogus stale keys.
func (b BogusStaleKeys) Len() int {
	return len(b.Unreachable) + len(b.Unexplained)
}

// ClassifyStaleKeys determines the bogus stale keys among the stale keys of
// the given version. A stale key is legitimate if its path is occupied by a
// node of the version's tree, thus the stale node was superseded by it.
func ClassifyStaleKeys(version uint64, keys VersionKeySets, staleKeys []NodeKey) BogusStaleKeys {
	var res BogusStaleKeys
	if len(staleKeys) == 0 {
		return res
	}

	if len(keys.UnreachableKeys) > 0 {
		log.Info("Found unreachable keys in tree",
			"version", version,
			"count", len(keys.UnreachableKeys),
			"sample", samplePaths(maps.Keys(keys.UnreachableKeys)),
		)
	}

	for _, staleKey := range staleKeys {
		if _, valid := keys.ValidKeys[staleKey.Nibbles]; valid {
			continue
		}
		if _, unreachable := keys.UnreachableKeys[staleKey.Nibbles]; unreachable {
			// A node touched by a truncated version that the retained tree
			// does not touch anymore.
			res.Unreachable = append(res.Unreachable, staleKey)
			continue
		}
		log.Warn("Unexplained bogus stale key: not present in any nodes changed in the tree version",
			"version", version, "key", staleKey)
		res.Unexplained = append(res.Unexplained, staleKey)
	}

	if res.Len() > 0 {
		log.Info("Found bogus stale keys",
			"version", version,
			"count", res.Len(),
			"unexplained", len(res.Unexplained),
			"sample", sampleKeys(res.All()),
		)
	}
	return res
}

func samplePaths(paths []Nibbles) []string {
	slices.SortFunc(paths, Nibbles.Compare)
	res := make([]string, 0, min(len(paths), sampleSize))
	for _, path := range paths[:min(len(paths), sampleSize)] {
		res = append(res, path.String())
	}
	return res
}

func sampleKeys(keys []NodeKey) []string {
	res := make([]string, 0, min(len(keys), sampleSize))
	for _, key := range keys[:min(len(keys), sampleSize)] {
		res = append(res, key.String())
	}
	return res
}

// checkVersion loads the stale keys of a single version and classifies them.
// Key sets are only loaded if there are stale keys.
func checkVersion(db StaleKeysRepairDatabase, version uint64) (BogusStaleKeys, error) {
	staleKeys, err := db.StaleKeys(version)
	if err != nil {
		return BogusStaleKeys{}, fmt.Errorf("failed loading stale keys of tree version %d; %w", version, err)
	}
	if len(staleKeys) == 0 {
		return BogusStaleKeys{}, nil
	}
	keys, err := db.AllKeysForVersion(version)
	if err != nil {
		return BogusStaleKeys{}, fmt.Errorf("failed loading keys changed in tree version %d; %w", version, err)
	}
	return ClassifyStaleKeys(version, keys, staleKeys), nil
}

// RunStaleKeysCheckForVersion returns the bogus stale keys of a single tree version.
func RunStaleKeysCheckForVersion(db StaleKeysRepairDatabase, version uint64) ([]NodeKey, error) {
	res, err := checkVersion(db, version)
	if err != nil {
		return nil, err
	}
	return res.All(), nil
}

// StaleKeysRepairHandle allows to stop a StaleKeysRepairTask.
type StaleKeysRepairHandle struct {
	aborted chan struct{}
	once    sync.Once
}

// Abort signals the paired task to stop after its current step. Calling it
// multiple times or after the task terminated has no effect.
func (h *StaleKeysRepairHandle) Abort() {
	h.once.Do(func() { close(h.aborted) })
}

// StaleKeysRepairTask removes bogus stale keys from a tree.
//
// Earlier releases did not remove stale keys of truncated versions. If the
// version replacing a truncated one did not modify the same paths, nodes
// still reachable in the tree remained marked as stale, so pruning could
// delete them. This task checks all versions for such records and removes
// them, persisting its progress together with each removal.
//
// At most one task may run on a database at a time.
type StaleKeysRepairTask struct {
	db           StaleKeysRepairDatabase
	parallelism  uint64
	pollInterval time.Duration
	aborted      <-chan struct{}
}

// NewStaleKeysRepairTask creates a task and the handle for stopping it.
func NewStaleKeysRepairTask(db StaleKeysRepairDatabase, config StaleKeysRepairConfig) (*StaleKeysRepairTask, *StaleKeysRepairHandle) {
	config = config.withDefaults()
	aborted := make(chan struct{})
	task := &StaleKeysRepairTask{
		db:           db,
		parallelism:  config.Parallelism,
		pollInterval: config.PollInterval,
		aborted:      aborted,
	}
	return task, &StaleKeysRepairHandle{aborted: aborted}
}

// Step checks the next range of versions and removes the bogus stale keys
// found in it. It returns true if the repair progress was advanced.
func (t *StaleKeysRepairTask) Step() (bool, error) {
	repairData, hasRepairData, err := t.db.StaleKeysRepairData()
	if err != nil {
		return false, fmt.Errorf("failed getting repair data; %w", err)
	}
	minStaleKeyVersion, hasStaleKeys, err := t.db.MinStaleKeyVersion()
	if err != nil {
		return false, fmt.Errorf("failed getting min stale key version; %w", err)
	}
	if !hasStaleKeys {
		log.Debug("No stale keys in tree, nothing to do")
		return false, nil
	}
	startVersion := minStaleKeyVersion
	if hasRepairData {
		startVersion = max(repairData.NextVersion, minStaleKeyVersion)
	}

	manifest, _, err := t.db.Manifest()
	if err != nil {
		return false, fmt.Errorf("failed getting tree manifest; %w", err)
	}
	latestVersion, found := manifest.LatestVersion()
	if !found {
		log.Warn("Tree has stale keys, but no latest versions", "minStaleKeyVersion", minStaleKeyVersion)
		return false, nil
	}

	endVersion := min(startVersion+t.parallelism-1, latestVersion)
	if startVersion > endVersion {
		log.Debug("No tree versions to check", "start", startVersion, "latest", latestVersion)
		return false, nil
	}

	log.Debug("Checking stale keys", "start", startVersion, "end", endVersion, "latest", latestVersion, "minStaleKeyVersion", minStaleKeyVersion)
	start := time.Now()
	results, err := t.checkVersions(startVersion, endVersion)
	if err != nil {
		return false, err
	}

	var removedKeys []StaleNodeKey
	unreachable, unexplained := 0, 0
	for i, result := range results {
		version := startVersion + uint64(i)
		for _, key := range result.All() {
			removedKeys = append(removedKeys, StaleNodeKey{Key: key, StaleSince: version})
		}
		unreachable += len(result.Unreachable)
		unexplained += len(result.Unexplained)
	}

	newData := StaleKeysRepairData{NextVersion: endVersion + 1}
	if err := t.db.RepairStaleKeys(newData, removedKeys); err != nil {
		return false, fmt.Errorf("failed removing bogus stale keys; %w", err)
	}
	log.Debug("Updated stale keys repair data", "nextVersion", newData.NextVersion, "removed", len(removedKeys), "latency", time.Since(start))

	repairCheckedVersions.Add(float64(len(results)))
	repairRemovedKeys.WithLabelValues(bogusKindUnreachable).Add(float64(unreachable))
	repairRemovedKeys.WithLabelValues(bogusKindUnexplained).Add(float64(unexplained))
	repairNextVersion.Set(float64(newData.NextVersion))
	repairStepDuration.Observe(time.Since(start).Seconds())
	return true, nil
}

// checkVersions classifies the stale keys of all versions in the given
// inclusive range concurrently. The first failure aborts the check.
func (t *StaleKeysRepairTask) checkVersions(startVersion, endVersion uint64) ([]BogusStaleKeys, error) {
	results := make([]BogusStaleKeys, endVersion-startVersion+1)
	group, ctx := errgroup.WithContext(context.Background())
	group.SetLimit(int(t.parallelism))
	for i := range results {
		version := startVersion + uint64(i)
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := checkVersion(t.db, version)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// waitForAbort waits for the given time and reports whether the task was
// aborted in the meantime.
func (t *StaleKeysRepairTask) waitForAbort(timeout time.Duration) bool {
	if timeout <= 0 {
		select {
		case <-t.aborted:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.aborted:
		return true
	case <-timer.C:
		return false
	}
}

// Run executes the task until it is aborted through its handle. Database
// errors stop the task and are returned; the task does not retry.
func (t *StaleKeysRepairTask) Run() error {
	wait := time.Duration(0)
	for !t.waitForAbort(wait) {
		progress, err := t.Step()
		if err != nil {
			return err
		}
		if progress {
			wait = 0
		} else {
			wait = t.pollInterval
		}
	}
	log.Info("Stop signal received, stale keys repair is shut down")
	return nil
}
