package main

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// stringList collects a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// pointList collects a repeatable X,Y flag.
type pointList []image.Point

func (l *pointList) String() string {
	parts := make([]string, len(*l))
	for i, p := range *l {
		parts[i] = formatPoint(p)
	}
	return strings.Join(parts, " ")
}

func (l *pointList) Set(v string) error {
	p, err := parsePoint(v)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func parseInts(val string, n int, what string) ([]int, error) {
	parts := strings.Split(val, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid %s %q", what, val)
	}
	nums := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", what, val)
		}
		nums[i] = v
	}
	return nums, nil
}

func parsePoint(val string) (image.Point, error) {
	nums, err := parseInts(val, 2, "point")
	if err != nil {
		return image.Point{}, err
	}
	return image.Pt(nums[0], nums[1]), nil
}

func formatPoint(pt image.Point) string {
	return fmt.Sprintf("%d,%d", pt.X, pt.Y)
}

func parseRect(val string) (image.Rectangle, error) {
	nums, err := parseInts(val, 4, "region")
	if err != nil {
		return image.Rectangle{}, err
	}
	r := image.Rect(nums[0], nums[1], nums[2], nums[3])
	if r.Empty() {
		return image.Rectangle{}, fmt.Errorf("region %q is empty", val)
	}
	return r, nil
}
