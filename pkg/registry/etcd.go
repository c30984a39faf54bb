// Package registry advertises a live node in etcd so an external harness or
// operator can see which protocol participants are up. Registration is a
// side channel only; nothing in the protocol path reads it back.
package registry

import (
	"context"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

const keyPrefix = "/maelnode/nodes/"

func NewClient(endpoints []string) (*clientv3.Client, error) {
	return clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: 5 * time.Second,
	})
}

// Register puts /maelnode/nodes/<id> under a TTL lease and keeps the lease
// alive until cancel is called. After a crash the key disappears when the
// lease expires; a clean shutdown should cancel and revoke the lease.
func Register(ctx context.Context, cli *clientv3.Client, id, value string, ttl int64) (clientv3.LeaseID, context.CancelFunc, error) {
	lease, err := cli.Grant(ctx, ttl)
	if err != nil {
		return 0, nil, fmt.Errorf("grant lease: %w", err)
	}

	key := keyPrefix + id
	if _, err := cli.Put(ctx, key, value, clientv3.WithLease(lease.ID)); err != nil {
		return 0, nil, fmt.Errorf("register %s: %w", key, err)
	}

	kaCtx, cancel := context.WithCancel(context.Background())
	ch, err := cli.KeepAlive(kaCtx, lease.ID)
	if err != nil {
		cancel()
		return 0, nil, fmt.Errorf("keepalive %s: %w", key, err)
	}
	go func() {
		// drain keepalive acks so the channel never backs up
		for range ch {
		}
	}()

	return lease.ID, cancel, nil
}
