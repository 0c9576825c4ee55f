// Package bhloop extracts a magnetic B-H hysteresis loop from a pickup-coil
// response channel and a sinusoidal field reference channel.
//
// A run is a strict pipeline:
//
//  1. locate the first positive and negative crests of the reference;
//  2. estimate and then fit A*sin(2*pi*f*t + phi) to the reference;
//  3. derive the instants T1 < T2 < T3 bounding one forward and one
//     reverse half-cycle;
//  4. integrate the response over each half-cycle (trapezoid rule) and
//     calibrate B and H;
//  5. center each branch by its curvature relative to its chord;
//  6. smooth both branches with a moving average.
//
// Each stage consumes only the previous one's output, the Record and the
// Config. The first failure aborts the run with an *Error naming the stage.
package bhloop
