// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the single-threaded readiness reactor: a Linux
// epoll instance that reports one ready descriptor per wait and can be
// interrupted through a context.
package reactor
