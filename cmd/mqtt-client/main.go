package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-io/simbamqtt"
	"github.com/golang-io/simbamqtt/packet"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	c := mqtt.New(
		mqtt.WithURL("mqtt://127.0.0.1:1883"),
		mqtt.WithOnPublish(func(msg *mqtt.InboundMessage) {
			payload, _ := io.ReadAll(msg.Payload)
			log.Printf("on: %s payload=%q", msg, payload)
		}),
		mqtt.WithOnError(func(err error) {
			log.Printf("protocol error: %v", err)
		}),
	)

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return c.Run(ctx)
	})

	group.Go(func() error {
		if err := c.Connect(ctx); err != nil {
			return err
		}
		if err := c.Subscribe(ctx, "a/b/c", 1); err != nil {
			return err
		}
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			err := c.Publish(ctx, &packet.Message{
				Topic:   "12345",
				Payload: []byte(time.Now().Format("2006-01-02 15:04:05")),
				QoS:     0,
			})
			if err != nil {
				log.Printf("%v", err)
			}
			time.Sleep(time.Second)
		}
	})

	group.Go(func() error {
		defer cancel()
		ignore := make(chan os.Signal, 1)
		sign := make(chan os.Signal, 1)

		signal.Notify(ignore, syscall.SIGHUP)
		signal.Notify(sign, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

		select {
		case <-ctx.Done():
			log.Printf("ctx done")
			return ctx.Err()
		case sig := <-sign:
			return fmt.Errorf("got sign: %s", sig)
		}
	})

	if err := group.Wait(); err != nil {
		log.Fatal(err)
	}
}
