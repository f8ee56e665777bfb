// Package hardware provides the sensor and actuator collaborators of the monitor.
//
// The monitor only depends on the SensorSource, Servo and Switch interfaces.
// Open builds either the periph.io backed drivers for the reference board
// (GPIO switches, hardware PWM servo, HC-SR04 ranging, IIO environmental
// channels) or in-process simulated devices for desktop runs.
package hardware
