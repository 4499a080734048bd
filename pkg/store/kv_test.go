package store

import (
	"bytes"
	"context"
	"sort"

	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// fakeKV is an in-memory implementation of [KV], supporting point
// and range operations (which is all that the stores need).
type fakeKV struct {
	data map[string]string
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) keys(op clientv3.Op) []string {
	key, end := op.KeyBytes(), op.RangeBytes()
	if len(end) == 0 {
		if _, ok := f.data[string(key)]; ok {
			return []string{string(key)}
		}
		return nil
	}

	var ks []string
	for k := range f.data {
		if bytes.Compare([]byte(k), key) >= 0 && bytes.Compare([]byte(k), end) < 0 {
			ks = append(ks, k)
		}
	}
	sort.Strings(ks)
	return ks
}

func (f *fakeKV) Get(_ context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	resp := &clientv3.GetResponse{}
	for _, k := range f.keys(clientv3.OpGet(key, opts...)) {
		resp.Kvs = append(resp.Kvs, &mvccpb.KeyValue{Key: []byte(k), Value: []byte(f.data[k])})
	}
	resp.Count = int64(len(resp.Kvs))
	return resp, nil
}

func (f *fakeKV) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.data[key] = val
	return &clientv3.PutResponse{}, nil
}

func (f *fakeKV) Delete(_ context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	resp := &clientv3.DeleteResponse{}
	for _, k := range f.keys(clientv3.OpDelete(key, opts...)) {
		delete(f.data, k)
		resp.Deleted++
	}
	return resp, nil
}
