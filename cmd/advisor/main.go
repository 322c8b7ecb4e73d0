// Package main is the reference advisor sidecar. It listens for world
// snapshots over UDP and answers each with movement nudges that herd needy
// agents toward the cluster of recently sated ones, on the theory that sated
// agents mark where resources were just found.
package main

import (
	"flag"
	"log"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/hivelab/hive/advisor"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:9007", "UDP address to listen on")
	satedBelow := flag.Int("sated-below", 50, "Needs level below which an agent counts as sated")
	needyAbove := flag.Int("needy-above", 100, "Needs level above which an agent gets nudged")
	maxPacket := flag.Int("max-packet", 32768, "Maximum UDP datagram size in bytes")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	laddr, err := net.ResolveUDPAddr("udp", *listen)
	if err != nil {
		log.Fatalf("resolve %q: %v", *listen, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		log.Fatalf("listen %q: %v", *listen, err)
	}
	defer conn.Close()
	slog.Info("advisor listening", "addr", conn.LocalAddr().String())

	var asm advisor.Assembler
	var msgID uint32
	buf := make([]byte, 65536)
	for {
		n, raddr, err := conn.ReadFromUDP(buf)
		if err != nil {
			log.Fatalf("read: %v", err)
		}
		payload, ok, err := asm.Accept(buf[:n])
		if err != nil {
			slog.Debug("dropped datagram", "err", err)
			continue
		}
		if !ok {
			continue
		}
		snap, err := advisor.DecodeSnapshot(payload)
		if err != nil {
			slog.Debug("dropped payload", "err", err)
			continue
		}

		start := time.Now()
		reply := advise(snap, *satedBelow, *needyAbove)
		out, err := advisor.EncodeSuggestions(reply)
		if err != nil {
			slog.Warn("encode reply failed", "err", err)
			continue
		}
		msgID++
		pkts, err := advisor.Chunk(msgID, out, *maxPacket)
		if err != nil {
			slog.Warn("chunk reply failed", "err", err)
			continue
		}
		for _, p := range pkts {
			if _, err := conn.WriteToUDP(p, raddr); err != nil {
				slog.Debug("send failed", "err", err)
				break
			}
		}
		slog.Debug("answered snapshot",
			"tick", snap.Tick,
			"agents", len(snap.Agents),
			"moves", len(reply.Moves),
			"took", time.Since(start))
	}
}

// advise herds needy agents toward the centroid of sated ones. With no sated
// cluster to aim at it stays silent; wandering is a better explorer than a
// nudge toward nothing.
func advise(snap advisor.Snapshot, satedBelow, needyAbove int) advisor.Suggestions {
	reply := advisor.Suggestions{Tick: snap.Tick}

	var cx, cy, sated int
	for _, a := range snap.Agents {
		if a.Alive && int(a.Hunger) < satedBelow && int(a.Thirst) < satedBelow {
			cx += int(a.X)
			cy += int(a.Y)
			sated++
		}
	}
	if sated == 0 {
		return reply
	}
	cx /= sated
	cy /= sated

	for _, a := range snap.Agents {
		if !a.Alive || (int(a.Hunger) < needyAbove && int(a.Thirst) < needyAbove) {
			continue
		}
		reply.Moves = append(reply.Moves, advisor.Suggestion{
			ID: a.ID,
			DX: sign(cx - int(a.X)),
			DY: sign(cy - int(a.Y)),
		})
	}
	return reply
}

func sign(v int) int8 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
