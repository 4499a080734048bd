// Package store reads and writes vote options and open votes
// as JSON documents in two key prefixes ("tables") of etcd.
package store

import (
	"context"
	"path"
	"strings"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	OptionsTable   = "vote-options"
	OpenVotesTable = "vote-open"

	// Delimiter separates list items inside a single stored field.
	Delimiter = ","
)

// KV is the subset of [clientv3.KV] that the stores use.
type KV interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
	Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error)
	Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error)
}

// table is a key prefix in etcd, with one JSON document per key.
type table struct {
	kv     KV
	prefix string
}

func newTable(kv KV, root, name string) table {
	return table{kv: kv, prefix: path.Join("/", root, name) + "/"}
}

func (t table) key(id string) string {
	return t.prefix + id
}

// get returns the value of a single key, or nil if the key doesn't exist.
func (t table) get(ctx context.Context, id string) ([]byte, error) {
	resp, err := t.kv.Get(ctx, t.key(id))
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	return resp.Kvs[0].Value, nil
}

// scan returns all the key-value pairs in the table, sorted by key.
func (t table) scan(ctx context.Context) ([]*mvccpb.KeyValue, error) {
	resp, err := t.kv.Get(ctx, t.prefix, clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, err
	}
	return resp.Kvs, nil
}

// id is the inverse of key.
func (t table) id(kv *mvccpb.KeyValue) string {
	return strings.TrimPrefix(string(kv.Key), t.prefix)
}

func (t table) put(ctx context.Context, id string, val []byte) error {
	_, err := t.kv.Put(ctx, t.key(id), string(val))
	return err
}

func (t table) delete(ctx context.Context, id string) (bool, error) {
	resp, err := t.kv.Delete(ctx, t.key(id))
	if err != nil {
		return false, err
	}
	return resp.Deleted > 0, nil
}
