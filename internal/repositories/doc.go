// package repositories provides sqlite-backed persistence for account state.
//
// [UserRepository] implements models.Repository[T] for user records; token and
// session repositories carry the narrower surfaces the auth broker needs.
package repositories
