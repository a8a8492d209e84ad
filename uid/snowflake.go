package uid

import (
	"net"
	"sync/atomic"
	"time"
)

type SnowflakeOptions struct {
	// MachineID 机器ID，小于 0 时从本机 IPv4 地址的后两个字节推导
	MachineID int64 `cfg:"machineID" def:"-1"`
}

// SnowflakeGenerator Snowflake算法生成器
// 64位结构：1位符号位(0) + 41位时间戳 + 10位机器ID + 12位序列号
type SnowflakeGenerator struct {
	state     int64 // 高52位时间戳 + 低12位序列号
	machineID int64
	epoch     int64
}

const (
	sequenceBits  = 12
	machineIDBits = 10

	maxSequence  = (1 << sequenceBits) - 1
	maxMachineID = (1 << machineIDBits) - 1

	machineIDShift = sequenceBits
	timestampShift = sequenceBits + machineIDBits
)

// epoch 2020-01-01 00:00:00 UTC
var epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

func NewSnowflakeGenerator(options *SnowflakeOptions) *SnowflakeGenerator {
	machineID := int64(-1)
	if options != nil {
		machineID = options.MachineID
	}
	if machineID < 0 {
		machineID = machineIDFromIP()
	}

	return &SnowflakeGenerator{
		state:     (time.Now().UnixMilli() - epoch) << sequenceBits,
		machineID: machineID & maxMachineID,
		epoch:     epoch,
	}
}

func machineIDFromIP() int64 {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return 0
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipv4 := ipnet.IP.To4(); ipv4 != nil {
				return int64(ipv4[2])<<8 | int64(ipv4[3])
			}
		}
	}

	return 0
}

func (g *SnowflakeGenerator) Generate() int64 {
	for {
		oldState := atomic.LoadInt64(&g.state)
		oldTimestamp := oldState >> sequenceBits
		oldSequence := oldState & maxSequence

		timestamp := time.Now().UnixMilli() - g.epoch
		sequence := int64(0)

		// 时钟回拨时沿用上一次的时间戳，保证单调
		if timestamp <= oldTimestamp {
			timestamp = oldTimestamp
			sequence = (oldSequence + 1) & maxSequence
			if sequence == 0 {
				for timestamp <= oldTimestamp {
					timestamp = time.Now().UnixMilli() - g.epoch
				}
			}
		}

		if atomic.CompareAndSwapInt64(&g.state, oldState, timestamp<<sequenceBits|sequence) {
			return timestamp<<timestampShift | g.machineID<<machineIDShift | sequence
		}
	}
}
