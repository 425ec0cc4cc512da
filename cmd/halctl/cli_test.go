package main

import (
	"reflect"
	"testing"
)

func TestSplitLCD(t *testing.T) {
	for _, tc := range []struct {
		args   []string
		before []string
		lcd    []string
		ok     bool
	}{
		{[]string{"-l", "0F"}, []string{"-l", "0F"}, nil, false},
		{[]string{"-c", "-x", "1", "-s", "hi"}, []string{}, []string{"-x", "1", "-s", "hi"}, true},
		{[]string{"-l", "1", "--i2clcd", "-y", "1"}, []string{"-l", "1"}, []string{"-y", "1"}, true},
	} {
		before, lcd, ok := splitLCD(tc.args)
		if ok != tc.ok {
			t.Errorf("%v: ok = %v", tc.args, ok)
		}
		if len(before) != len(tc.before) || (len(before) > 0 && !reflect.DeepEqual(before, tc.before)) {
			t.Errorf("%v: before = %v, want %v", tc.args, before, tc.before)
		}
		if !reflect.DeepEqual(lcd, tc.lcd) {
			t.Errorf("%v: lcd = %v, want %v", tc.args, lcd, tc.lcd)
		}
	}
}

func TestNormalizePM(t *testing.T) {
	for _, tc := range []struct {
		in, want []string
	}{
		{[]string{"-p"}, []string{"--sa_pm=plain"}},
		{[]string{"-p", "json"}, []string{"--sa_pm=json"}},
		{[]string{"-pjson"}, []string{"--sa_pm=json"}},
		{[]string{"-p", "-i"}, []string{"--sa_pm=plain", "-i"}},
		{[]string{"--sa_pm", "json"}, []string{"--sa_pm=json"}},
		{[]string{"-l", "3"}, []string{"-l", "3"}},
	} {
		if got := normalizePM(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("normalizePM(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseMain(t *testing.T) {
	cli, err := parseMain([]string{"-d", "50", "-e", "standby", "-l", "0A", "-p", "-x", "json", "--si_bmx055gyro=y", "-z", "z", "-i"})
	if err != nil {
		t.Fatal(err)
	}
	want := CLI{
		Info:     true,
		MotorDC:  "50",
		MotorDC2: "standby",
		LED:      "0A",
		PM:       pmPlain,
		Acc:      "json",
		Gyro:     "y",
		Mag:      "z",
	}
	if *cli != want {
		t.Errorf("parsed %+v, want %+v", *cli, want)
	}
}

func TestParseMainRejectsUnknownFlags(t *testing.T) {
	if _, err := parseMain([]string{"--bogus"}); err == nil {
		t.Error("expected an error")
	}
}

func TestParseLCD(t *testing.T) {
	opts, err := parseLCD([]string{"-x", "3", "--dir_y=1", "-s", "a very long string indeed"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.X != 3 || opts.Y != 1 {
		t.Errorf("position = %d,%d", opts.X, opts.Y)
	}
	if opts.S != "a very long stri" {
		t.Errorf("string = %q", opts.S)
	}
}
