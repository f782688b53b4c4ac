// Package users mounts the admin user-management endpoints: account
// creation, listing with filters, partial updates, status toggling,
// deletion and password resets that revoke every live session.
package users
