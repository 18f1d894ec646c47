/*
 * @author: Sun977
 * @date: 2026.07.19
 * @description: Bridge 程序入口
 */

package main

func main() {
	Execute()
}
